package contactform_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/okian/montpellier/internal/adapters/contactform"
	"github.com/okian/montpellier/internal/domain/contact"
	"github.com/okian/montpellier/internal/domain/model"
	"github.com/okian/montpellier/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func valid() model.ContactSubmission {
	return model.ContactSubmission{
		Nombre:      " Ana ",
		Email:       "ana@example.com",
		Telefono:    "3001112233",
		Comentarios: "Hola",
	}
}

func relay(status int, contentType, body string, hits *atomic.Int32, got *http.Request) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if got != nil {
			_ = r.ParseForm()
			*got = *r
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func states(ts []contactform.Transition) []contactform.State {
	out := make([]contactform.State, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.To)
	}
	return out
}

func TestSubmitValidation(t *testing.T) {
	Convey("Given a form handler", t, func() {
		var hits atomic.Int32
		srv := relay(http.StatusOK, "application/json", `{"success":true}`, &hits, nil)
		defer srv.Close()

		h, err := contactform.New(srv.URL)
		So(err, ShouldBeNil)
		var seen []contactform.Transition
		h.OnTransition(func(t contactform.Transition) { seen = append(seen, t) })

		Convey("When a required field is blank", func() {
			sub := valid()
			sub.Nombre = "   "
			out, err := h.Submit(context.Background(), sub)

			Convey("Then it fails locally without a request", func() {
				So(err, ShouldBeNil)
				So(out.Success, ShouldBeFalse)
				So(out.Message, ShouldEqual, contact.MsgMissingFields)
				So(hits.Load(), ShouldEqual, 0)
				So(states(seen), ShouldResemble, []contactform.State{
					contactform.Validating, contactform.Error, contactform.Idle,
				})
				So(seen[1].Message, ShouldEqual, contact.MsgMissingFields)
				So(h.State(), ShouldEqual, contactform.Idle)
			})
		})

		Convey("When the email is malformed", func() {
			sub := valid()
			sub.Email = "ana@example"
			out, _ := h.Submit(context.Background(), sub)

			Convey("Then the email message is shown", func() {
				So(out.Message, ShouldEqual, contact.MsgInvalidEmail)
				So(out.Reason, ShouldEqual, "invalid_email")
				So(hits.Load(), ShouldEqual, 0)
			})
		})
	})
}

func TestSubmitRelayAnswers(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		contentType string
		body        string
		success     bool
		message     string
	}{
		{"accepted", 200, "application/json", `{"success":true,"message":"ok"}`, true, contactform.MsgSuccess},
		{"refused with message", 200, "application/json", `{"success":false,"message":"No disponible"}`, false, "No disponible"},
		{"refused silently", 200, "application/json", `{"success":false}`, false, contactform.MsgRejected},
		{"not JSON", 200, "text/html", `<html>oops</html>`, false, contactform.MsgUnexpected},
		{"bad request with message", 400, "application/json", `{"success":false,"message":"El correo electrónico no es válido."}`, false, "El correo electrónico no es válido."},
		{"server error as text", 500, "text/plain", `Fatal error in contact.php line 12`, false, contactform.MsgServerError},
	}

	for _, tc := range cases {
		Convey("Given a relay that answers "+tc.name, t, func() {
			var hits atomic.Int32
			var got http.Request
			srv := relay(tc.status, tc.contentType, tc.body, &hits, &got)
			defer srv.Close()

			h, err := contactform.New(srv.URL + "/server/contact.php")
			So(err, ShouldBeNil)
			var seen []contactform.Transition
			h.OnTransition(func(t contactform.Transition) { seen = append(seen, t) })

			out, err := h.Submit(context.Background(), valid())

			Convey("Then exactly one form post is made and the message is mapped", func() {
				So(err, ShouldBeNil)
				So(hits.Load(), ShouldEqual, 1)
				So(got.Method, ShouldEqual, http.MethodPost)
				So(got.URL.Path, ShouldEqual, "/server/contact.php")
				So(got.PostForm.Get("nombre"), ShouldEqual, "Ana")
				So(got.PostForm.Get("comentarios"), ShouldEqual, "Hola")
				So(out.Success, ShouldEqual, tc.success)
				So(out.Message, ShouldEqual, tc.message)
				So(out.Submission.Nombre, ShouldEqual, "Ana")

				final := contactform.Error
				if tc.success {
					final = contactform.Success
				}
				So(states(seen), ShouldResemble, []contactform.State{
					contactform.Validating, contactform.Submitting, final, contactform.Idle,
				})
			})
		})
	}

	Convey("Given an unreachable relay", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		h, _ := contactform.New(url)
		out, err := h.Submit(context.Background(), valid())

		Convey("Then the connection message is shown", func() {
			So(err, ShouldBeNil)
			So(out.Message, ShouldEqual, contactform.MsgConnection)
			So(h.State(), ShouldEqual, contactform.Idle)
		})
	})
}

func TestSubmitBusy(t *testing.T) {
	Convey("Given a submission in flight", t, func() {
		release := make(chan struct{})
		entered := make(chan struct{})
		var once sync.Once
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			once.Do(func() { close(entered) })
			<-release
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true}`))
		}))
		defer srv.Close()

		h, _ := contactform.New(srv.URL)
		done := make(chan contactform.Outcome, 1)
		go func() {
			out, _ := h.Submit(context.Background(), valid())
			done <- out
		}()
		<-entered

		Convey("When a second submission starts", func() {
			_, err := h.Submit(context.Background(), valid())
			So(h.State(), ShouldEqual, contactform.Submitting)
			close(release)
			first := <-done

			Convey("Then it is rejected and the first completes", func() {
				So(errors.Is(err, contactform.ErrBusy), ShouldBeTrue)
				So(first.Success, ShouldBeTrue)
				So(h.State(), ShouldEqual, contactform.Idle)
			})
		})
	})
}

func TestNew(t *testing.T) {
	Convey("Given a relative relay url", t, func() {
		_, err := contactform.New("/server/contact.php")

		Convey("Then construction fails", func() {
			So(errors.Is(err, contactform.ErrInvalidURL), ShouldBeTrue)
		})
	})

	Convey("Given state names", t, func() {
		So(contactform.Idle.String(), ShouldEqual, "idle")
		So(contactform.Submitting.String(), ShouldEqual, "submitting")
		So(contactform.State(42).String(), ShouldEqual, "unknown")
	})
}
