package contact

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachkp/portfolio/internal/dom"
)

const formHTML = `<html><body>
<form id="formSection">
  <input id="contactEmail" type="email"><span id="emailError"></span>
  <textarea id="contactMessage"></textarea><span id="messageError"></span>
  <span id="charactersLeft">Characters: 0/300</span>
</form>
</body></html>`

type formFixture struct {
	doc  *dom.Document
	el   Elements
	form *Form
}

func newFormFixture(t *testing.T) *formFixture {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader(formHTML))
	require.NoError(t, err)
	el := Elements{
		Form:         doc.GetElementByID("formSection"),
		Email:        doc.GetElementByID("contactEmail"),
		Message:      doc.GetElementByID("contactMessage"),
		EmailError:   doc.GetElementByID("emailError"),
		MessageError: doc.GetElementByID("messageError"),
		Counter:      doc.GetElementByID("charactersLeft"),
	}
	f := Attach(el, NewValidator(nil), doc.Window(), nil)
	doc.Flush()
	return &formFixture{doc: doc, el: el, form: f}
}

func (f *formFixture) typeInto(t *testing.T, email, message string) {
	t.Helper()
	f.doc.SyncValues(map[string]string{
		f.el.Email.Key():   email,
		f.el.Message.Key(): message,
	})
}

func (f *formFixture) submit(t *testing.T) dom.Update {
	t.Helper()
	require.NoError(t, f.doc.Dispatch(f.el.Form.Key(), "submit"))
	return f.doc.Flush()
}

func TestSubmitShowsBothErrors(t *testing.T) {
	f := newFormFixture(t)

	u := f.submit(t)

	assert.Equal(t, ErrEmailEmpty, f.el.EmailError.Text())
	assert.Equal(t, ErrMessageEmpty, f.el.MessageError.Text())
	assert.Empty(t, u.Alerts)
}

func TestSubmitKeepsValuesOnFailure(t *testing.T) {
	f := newFormFixture(t)
	f.typeInto(t, "a@b", "hello")

	f.submit(t)

	assert.Equal(t, ErrEmailFormat, f.el.EmailError.Text())
	assert.Empty(t, f.el.MessageError.Text())
	assert.Equal(t, "a@b", f.el.Email.Value())
	assert.Equal(t, "hello", f.el.Message.Value())
}

func TestSubmitClearsPreviousErrors(t *testing.T) {
	f := newFormFixture(t)
	f.submit(t)
	require.NotEmpty(t, f.el.EmailError.Text())

	f.typeInto(t, "a@b.com", "")
	f.submit(t)

	assert.Empty(t, f.el.EmailError.Text())
	assert.Equal(t, ErrMessageEmpty, f.el.MessageError.Text())
}

func TestSubmitSuccessResetsForm(t *testing.T) {
	f := newFormFixture(t)
	f.typeInto(t, "a@b.com", "hello")
	require.NoError(t, f.doc.Dispatch(f.el.Message.Key(), "input"))
	require.Equal(t, "Characters: 5/300", f.el.Counter.Text())

	u := f.submit(t)

	assert.Equal(t, []string{SuccessMessage}, u.Alerts)
	assert.Empty(t, f.el.Email.Value())
	assert.Empty(t, f.el.Message.Value())
	assert.Equal(t, "Characters: 0/300", f.el.Counter.Text())
	assert.Empty(t, f.el.EmailError.Text())
	assert.Empty(t, f.el.MessageError.Text())

	// the browser copy of the cleared controls is replaced
	var keys []string
	for _, p := range u.Patches {
		keys = append(keys, p.Key)
	}
	assert.Contains(t, keys, f.el.Email.Key())
	assert.Contains(t, keys, f.el.Message.Key())
	assert.Contains(t, keys, f.el.Counter.Key())
}

func TestCounterTracksEveryInput(t *testing.T) {
	f := newFormFixture(t)

	for _, n := range []int{0, 1, 299, 300, 301, 450} {
		f.typeInto(t, "", strings.Repeat("x", n))
		require.NoError(t, f.doc.Dispatch(f.el.Message.Key(), "input"))
		assert.Equal(t, CounterText(n), f.el.Counter.Text())
	}

	u := f.doc.Flush()
	require.Len(t, u.Patches, 1)
	assert.Equal(t, f.el.Counter.Key(), u.Patches[0].Key)
	assert.Contains(t, u.Patches[0].HTML, "Characters: 450/300")
}

func TestSubmitMessageLengthBoundary(t *testing.T) {
	f := newFormFixture(t)

	f.typeInto(t, "a@b.com", strings.Repeat("m", MaxMessageLength+1))
	res := f.form.Submit()
	assert.Equal(t, ErrMessageLength, res.Message)
	assert.Equal(t, ErrMessageLength, f.el.MessageError.Text())

	f.typeInto(t, "a@b.com", strings.Repeat("m", MaxMessageLength))
	res = f.form.Submit()
	assert.True(t, res.Valid())
}
