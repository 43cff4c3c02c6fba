package contact

import (
	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/dom"
	"github.com/Zachkp/portfolio/internal/logging"
)

// Elements are the form controls and message slots.
type Elements struct {
	Form         *dom.Element
	Email        *dom.Element
	Message      *dom.Element
	EmailError   *dom.Element
	MessageError *dom.Element
	Counter      *dom.Element
}

// Alerter shows a confirmation to the visitor.
type Alerter interface {
	Alert(message string)
}

// Form wires a Validator to the contact form elements.
type Form struct {
	el        Elements
	validator *Validator
	alerter   Alerter
	logger    *zap.Logger
}

// Attach registers the submit and input listeners and returns the Form.
func Attach(el Elements, validator *Validator, alerter Alerter, logger *zap.Logger) *Form {
	f := &Form{
		el:        el,
		validator: validator,
		alerter:   alerter,
		logger:    logging.OrNop(logger),
	}
	el.Message.AddEventListener("input", func(*dom.Event) { f.UpdateCounter() })
	el.Form.AddEventListener("submit", func(*dom.Event) { f.Submit() })
	return f
}

// UpdateCounter shows the current message length, uncapped.
func (f *Form) UpdateCounter() {
	f.el.Counter.SetText(CounterText(Length(f.el.Message.Value())))
}

// Submit validates the current field values. On failure the messages are
// shown and the fields keep their values. On success the visitor is
// alerted and the form is reset.
func (f *Form) Submit() Result {
	f.el.EmailError.SetText("")
	f.el.MessageError.SetText("")

	res := f.validator.Validate(f.el.Email.Value(), f.el.Message.Value())
	if res.Email != "" {
		f.el.EmailError.SetText(res.Email)
	}
	if res.Message != "" {
		f.el.MessageError.SetText(res.Message)
	}
	if !res.Valid() {
		f.logger.Debug("Contact form rejected",
			zap.String("email_error", res.Email),
			zap.String("message_error", res.Message),
		)
		return res
	}

	f.alerter.Alert(SuccessMessage)
	f.el.Email.SetValue("")
	f.el.Message.SetValue("")
	f.el.Counter.SetText(CounterText(0))
	f.logger.Info("Contact form accepted")
	return res
}
