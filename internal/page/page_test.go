package page

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/dom"
)

const skeleton = `<!DOCTYPE html>
<html>
<head><title>Portfolio</title></head>
<body>
<section id="aboutMe"></section>
<section>
  <div class="arrow-left">&lt;</div>
  <div id="projectList"></div>
  <div class="arrow-right">&gt;</div>
  <div id="projectSpotlight"><div id="spotlightTitles"></div></div>
</section>
<form id="formSection">
  <input id="contactEmail" type="email"><p id="emailError"></p>
  <textarea id="contactMessage"></textarea><p id="messageError"></p>
  <p id="charactersLeft">Characters: 0/300</p>
  <button type="submit">Send</button>
</form>
</body>
</html>`

type stubFetcher map[string]string

func (s stubFetcher) FetchJSON(_ context.Context, ref string, target any) bool {
	body, ok := s[ref]
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(body), target) == nil
}

func testDeps() Deps {
	return Deps{
		Fetcher: stubFetcher{
			"./data/aboutMeData.json":  `{"aboutMe":"Hi, I build software."}`,
			"./data/projectsData.json": `[{"project_id":"mail","project_name":"Mail TUI","long_description":"terminal mail"},{"project_id":"music","project_name":"Music TUI","long_description":"terminal music"}]`,
		},
		AboutMeSource:  "./data/aboutMeData.json",
		ProjectsSource: "./data/projectsData.json",
	}
}

func TestNewRendersAllSections(t *testing.T) {
	p, err := New(context.Background(), []byte(skeleton), testDeps())
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)

	var buf bytes.Buffer
	require.NoError(t, p.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, `data-live-page="`+p.ID+`"`)
	assert.Contains(t, out, "Hi, I build software.")
	assert.Contains(t, out, `class="headshotContainer"`)
	assert.Contains(t, out, "Mail TUI")
	assert.Contains(t, out, "Music TUI")
	assert.Contains(t, out, "terminal mail", "first project is spotlighted")
	assert.NotContains(t, out, "terminal music")
	assert.Contains(t, out, `data-live-on="submit"`)

	assert.True(t, p.Document().Flush().Empty(), "initial changes are part of the first render")
}

func TestNewWithoutDataKeepsSectionsEmpty(t *testing.T) {
	deps := testDeps()
	deps.Fetcher = stubFetcher{}

	p, err := New(context.Background(), []byte(skeleton), deps)
	require.NoError(t, err)

	doc := p.Document()
	assert.Empty(t, doc.GetElementByID("aboutMe").Children())
	assert.Empty(t, doc.GetElementByID("projectList").Children())
	assert.Equal(t, 0, p.Gallery().State().Len())
}

func TestNewRejectsIncompleteSkeleton(t *testing.T) {
	broken := strings.Replace(skeleton, `<div class="arrow-right">&gt;</div>`, "", 1)
	broken = strings.Replace(broken, `id="emailError"`, "", 1)

	_, err := New(context.Background(), []byte(broken), testDeps())
	require.ErrorIs(t, err, ErrContract)
	assert.Contains(t, err.Error(), ".arrow-right")
	assert.Contains(t, err.Error(), "#emailError")
	assert.NotContains(t, err.Error(), "#aboutMe")
}

func TestHandleEventSpotlight(t *testing.T) {
	p, err := New(context.Background(), []byte(skeleton), testDeps())
	require.NoError(t, err)

	cards := p.Document().GetElementByID("projectList").Children()
	require.Len(t, cards, 2)

	u, err := p.HandleEvent(Event{Key: cards[1].Key(), Type: "click", Width: 1280})
	require.NoError(t, err)
	require.Len(t, u.Patches, 1)
	assert.Equal(t, p.Document().GetElementByID("projectSpotlight").Key(), u.Patches[0].Key)
	assert.Contains(t, u.Patches[0].HTML, "terminal music")

	current, _ := p.Gallery().State().Current()
	assert.Equal(t, 1, current)
}

func TestHandleEventScrollUsesReportedWidth(t *testing.T) {
	p, err := New(context.Background(), []byte(skeleton), testDeps())
	require.NoError(t, err)
	doc := p.Document()
	right := doc.QuerySelector(".arrow-right").Key()
	list := doc.GetElementByID("projectList").Key()

	u, err := p.HandleEvent(Event{Key: right, Type: "click", Width: 1440})
	require.NoError(t, err)
	assert.Equal(t, []dom.Scroll{{Key: list, Top: 200}}, u.Scrolls)

	u, err = p.HandleEvent(Event{Key: right, Type: "click", Width: 600})
	require.NoError(t, err)
	assert.Equal(t, []dom.Scroll{{Key: list, Left: 200}}, u.Scrolls)
}

func TestHandleEventSubmit(t *testing.T) {
	p, err := New(context.Background(), []byte(skeleton), testDeps())
	require.NoError(t, err)
	doc := p.Document()
	form := doc.GetElementByID("formSection").Key()
	email := doc.GetElementByID("contactEmail").Key()
	message := doc.GetElementByID("contactMessage").Key()

	u, err := p.HandleEvent(Event{Key: form, Type: "submit", Values: map[string]string{email: "", message: ""}})
	require.NoError(t, err)
	assert.Empty(t, u.Alerts)
	assert.Equal(t, contact.ErrEmailEmpty, doc.GetElementByID("emailError").Text())
	assert.Equal(t, contact.ErrMessageEmpty, doc.GetElementByID("messageError").Text())

	u, err = p.HandleEvent(Event{Key: form, Type: "submit", Values: map[string]string{email: "a@b.com", message: "hello"}})
	require.NoError(t, err)
	assert.Equal(t, []string{contact.SuccessMessage}, u.Alerts)
	assert.Equal(t, "Characters: 0/300", doc.GetElementByID("charactersLeft").Text())
}

func TestHandleEventUnknownTarget(t *testing.T) {
	p, err := New(context.Background(), []byte(skeleton), testDeps())
	require.NoError(t, err)

	_, err = p.HandleEvent(Event{Key: "n99999", Type: "click"})
	assert.ErrorIs(t, err, dom.ErrUnknownTarget)
}

func TestHandleEventIgnoresOutOfOrderInput(t *testing.T) {
	p, err := New(context.Background(), []byte(skeleton), testDeps())
	require.NoError(t, err)
	doc := p.Document()
	message := doc.GetElementByID("contactMessage").Key()
	counter := doc.GetElementByID("charactersLeft")

	u, err := p.HandleEvent(Event{Key: message, Type: "input", Seq: 2, Values: map[string]string{message: "ab"}})
	require.NoError(t, err)
	assert.False(t, u.Empty())
	assert.Equal(t, "Characters: 2/300", counter.Text())

	// the earlier keystroke arrives late
	u, err = p.HandleEvent(Event{Key: message, Type: "input", Seq: 1, Values: map[string]string{message: "a"}})
	require.NoError(t, err)
	assert.True(t, u.Empty())
	assert.Equal(t, "Characters: 2/300", counter.Text())
	assert.Equal(t, "ab", doc.GetElementByID("contactMessage").Value())

	// unnumbered events are always handled
	_, err = p.HandleEvent(Event{Key: message, Type: "input", Values: map[string]string{message: "abc"}})
	require.NoError(t, err)
	assert.Equal(t, "Characters: 3/300", counter.Text())
}
