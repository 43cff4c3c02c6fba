package main

import (
	"bytes"
	"encoding/json"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/aboutme"
	"github.com/Zachkp/portfolio/internal/gallery"
	"github.com/Zachkp/portfolio/internal/models"
	"github.com/Zachkp/portfolio/internal/page"
)

func TestShippedSkeletonSatisfiesContract(t *testing.T) {
	skeleton, err := os.ReadFile(filepath.Join("templates", "index.html"))
	require.NoError(t, err)
	assert.NoError(t, checkSkeleton(skeleton))
}

func runCheckIn(t *testing.T, root string) (string, error) {
	t.Helper()
	t.Setenv("SITE_ROOT", root)
	t.Setenv("LOG_FILE", filepath.Join(t.TempDir(), "check.log"))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"check"})
	err := cmd.Execute()
	return out.String(), err
}

func TestCheckCommandWithShippedSite(t *testing.T) {
	out, err := runCheckIn(t, ".")
	require.NoError(t, err)
	assert.Contains(t, out, "skeleton: ok")
	assert.Contains(t, out, "about me: ok")
	assert.Contains(t, out, "projects: ok (4)")
}

func TestCheckCommandReportsMissingData(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "templates"), 0755))
	skeleton, err := os.ReadFile(filepath.Join("templates", "index.html"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "templates", "index.html"), skeleton, 0644))

	out, err := runCheckIn(t, root)
	require.NoError(t, err)
	assert.Contains(t, out, "about me: unavailable")
	assert.Contains(t, out, "projects: unavailable")
}

func TestCheckCommandFailsOnBrokenSkeleton(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "templates"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "templates", "index.html"), []byte(`<html><body><div id="aboutMe"></div></body></html>`), 0644))

	out, err := runCheckIn(t, root)
	require.ErrorIs(t, err, page.ErrContract)
	assert.Contains(t, out, "skeleton: FAIL")
	assert.Contains(t, out, "#projectList")
}

func TestShippedImagesExist(t *testing.T) {
	refs := []string{aboutme.DefaultHeadshot, gallery.PlaceholderCard, gallery.PlaceholderSpotlight}

	var bio models.Biography
	raw, err := os.ReadFile(filepath.Join("data", "aboutMeData.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &bio))
	refs = append(refs, bio.Headshot)

	var projects []models.Project
	raw, err = os.ReadFile(filepath.Join("data", "projectsData.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &projects))
	for _, p := range projects {
		refs = append(refs, p.CardImage, p.SpotlightImage)
	}

	for _, ref := range refs {
		if ref == "" {
			continue
		}
		_, err := os.Stat(filepath.FromSlash(ref))
		assert.NoError(t, err, ref)
	}
}

func TestInternalPackagesAreDocumented(t *testing.T) {
	dirs, err := os.ReadDir("internal")
	require.NoError(t, err)

	for _, dir := range dirs {
		if !dir.IsDir() {
			continue
		}
		files, err := filepath.Glob(filepath.Join("internal", dir.Name(), "*.go"))
		require.NoError(t, err)

		documented := false
		for _, file := range files {
			if strings.HasSuffix(file, "_test.go") {
				continue
			}
			f, err := parser.ParseFile(token.NewFileSet(), file, nil, parser.PackageClauseOnly|parser.ParseComments)
			require.NoError(t, err)
			if f.Doc != nil {
				documented = true
				break
			}
		}
		assert.True(t, documented, "package %s has no doc comment", dir.Name())
	}
}
