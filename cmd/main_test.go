package main

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/montpellier/internal/adapters/contactform"
	app "github.com/okian/montpellier/internal/app"
	"github.com/okian/montpellier/internal/config"
	"github.com/okian/montpellier/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// startSite serves newRouter on a listener whose address is also the content
// base URL, the way a deployed server fetches its own data files.
func startSite(t *testing.T, mountRelay bool) (*httptest.Server, *app.Service) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.New(context.Background())
	cfg.Addr = ln.Addr().String()
	cfg.ContactLogPath = t.TempDir() + "/contact_log.txt"
	cfg.MountRelay = mountRelay

	var svc *app.Service
	if mountRelay {
		svc = newRelayService(cfg, logger.Get())
		if err := svc.Start(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	router, err := newRouter(cfg, svc, logger.Get())
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewUnstartedServer(router)
	_ = srv.Listener.Close()
	srv.Listener = ln
	srv.Start()
	return srv, svc
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestServer(t *testing.T) {
	convey.Convey("Given the site server with the relay mounted", t, func() {
		srv, svc := startSite(t, true)
		defer srv.Close()
		defer svc.Stop()

		convey.Convey("When the index page is requested", func() {
			resp, err := http.Get(srv.URL + "/")
			convey.So(err, convey.ShouldBeNil)
			body := readAll(t, resp)

			convey.Convey("Then it is rendered from the site's own data", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
				convey.So(err, convey.ShouldBeNil)
				convey.So(doc.Find(".player-card").Length(), convey.ShouldEqual, 4)
				convey.So(body, convey.ShouldContainSubstring, "Andrés Gómez")
			})
		})

		convey.Convey("When the operational endpoints are requested", func() {
			health, err := http.Get(srv.URL + "/healthz")
			convey.So(err, convey.ShouldBeNil)
			healthBody := readAll(t, health)
			stats, err := http.Get(srv.URL + "/stats")
			convey.So(err, convey.ShouldBeNil)
			var statsBody map[string]any
			convey.So(json.NewDecoder(stats.Body).Decode(&statsBody), convey.ShouldBeNil)
			_ = stats.Body.Close()
			docs, err := http.Get(srv.URL + "/api-docs")
			convey.So(err, convey.ShouldBeNil)
			_ = readAll(t, docs)

			convey.Convey("Then they answer", func() {
				convey.So(health.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(healthBody, convey.ShouldContainSubstring, `"ok"`)
				convey.So(statsBody["started"], convey.ShouldEqual, true)
				convey.So(statsBody["smtp"], convey.ShouldEqual, false)
				convey.So(docs.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When the relay receives a valid submission", func() {
			resp, err := http.PostForm(srv.URL+"/server/contact.php", url.Values{
				"nombre":   {"Ana"},
				"email":    {"ana@example.com"},
				"telefono": {"3001112233"},
			})
			convey.So(err, convey.ShouldBeNil)
			var out map[string]any
			convey.So(json.NewDecoder(resp.Body).Decode(&out), convey.ShouldBeNil)
			_ = resp.Body.Close()

			convey.Convey("Then it is logged and acknowledged", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(out["success"], convey.ShouldEqual, true)
				convey.So(svc.GetStats()["logged"], convey.ShouldEqual, int64(1))
			})
		})

		convey.Convey("When the no-JS contact form is posted", func() {
			resp, err := http.PostForm(srv.URL+"/contacto", url.Values{
				"nombre":      {"Ana"},
				"email":       {"ana@example.com"},
				"telefono":    {"3001112233"},
				"comentarios": {"Reserva para el sábado"},
			})
			convey.So(err, convey.ShouldBeNil)
			body := readAll(t, resp)

			convey.Convey("Then the form goes through the relay and the outcome is shown", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
				convey.So(err, convey.ShouldBeNil)
				convey.So(doc.Find("#form-message").HasClass("success"), convey.ShouldBeTrue)
				convey.So(doc.Find("#form-message").Text(), convey.ShouldEqual, contactform.MsgSuccess)
				convey.So(svc.GetStats()["received"], convey.ShouldEqual, int64(1))
			})
		})
	})

	convey.Convey("Given the site server without the relay", t, func() {
		srv, _ := startSite(t, false)
		defer srv.Close()

		convey.Convey("When a submission is posted to the relay path", func() {
			resp, err := http.PostForm(srv.URL+"/server/contact.php", url.Values{"nombre": {"Ana"}})
			convey.So(err, convey.ShouldBeNil)
			_ = readAll(t, resp)

			convey.Convey("Then nothing accepts it", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusMethodNotAllowed)
			})
		})

		convey.Convey("When stats are requested", func() {
			resp, err := http.Get(srv.URL + "/stats")
			convey.So(err, convey.ShouldBeNil)
			body := readAll(t, resp)

			convey.Convey("Then they are empty", func() {
				convey.So(strings.TrimSpace(body), convey.ShouldEqual, "{}")
			})
		})
	})
}

func TestNewRelayService(t *testing.T) {
	convey.Convey("Given a config with SMTP credentials", t, func() {
		cfg := config.New(context.Background())
		cfg.SMTPUser = "mailer@example.com"
		cfg.SMTPPass = "secret"
		cfg.ContactLogPath = t.TempDir() + "/log.txt"

		svc := newRelayService(cfg, logger.Get())

		convey.Convey("Then delivery is enabled", func() {
			convey.So(svc.SMTPEnabled(), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a config without SMTP credentials", t, func() {
		cfg := config.New(context.Background())
		svc := newRelayService(cfg, logger.Get())

		convey.Convey("Then the relay runs in log-only mode", func() {
			convey.So(svc.SMTPEnabled(), convey.ShouldBeFalse)
			convey.So(svc.GetStats()["started"], convey.ShouldBeFalse)
		})
	})
}
