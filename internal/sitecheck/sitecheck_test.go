package sitecheck_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/montpellier/internal/sitecheck"
	"github.com/okian/montpellier/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var siteData = map[string]string{
	"/data/jugadores.json":      `[{"id":"Ana Pérez","nombre":"Ana","texto":"x","puesto":1}]`,
	"/data/menu.json":           `{"bebidas":[{"id":"agua","nombre":"Agua","precio":"3000"}]}`,
	"/data/galeria.json":        `{"mesas":["a.jpg"]}`,
	"/data/eventos.json":        `{"torneos":[{"id":"t","nombre":"T","descripcion":"d"}],"publicaciones":[]}`,
	"/data/datos_contacto.json": `{"contact_phones":["300"],"contact_emails":["a@b.co"]}`,
}

func newSite(data map[string]string, images map[string]bool) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if body, ok := data[r.URL.Path]; ok {
			if body == "" {
				http.Error(w, "boom", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
			return
		}
		if images[r.URL.Path] {
			w.Header().Set("Content-Type", "image/jpeg")
			return
		}
		http.NotFound(w, r)
	}))
}

func allImages() map[string]bool {
	return map[string]bool{
		"/img/jugadores/ana_perez.jpg": true,
		"/img/menu/bebidas/agua.jpg":   true,
		"/img/galeria/mesas/a.jpg":     true,
		"/img/eventos/t.jpg":           true,
		"/img/placeholder.jpg":         true,
	}
}

func TestRun(t *testing.T) {
	Convey("Given a site where every resource and image exists", t, func() {
		srv := newSite(siteData, allImages())
		defer srv.Close()

		var out bytes.Buffer
		report, err := sitecheck.Run(context.Background(), &sitecheck.Config{
			BaseURL: srv.URL,
			Workers: 2,
			Timeout: 2 * time.Second,
			Out:     &out,
		})

		Convey("Then the check passes", func() {
			So(err, ShouldBeNil)
			So(report.OK(), ShouldBeTrue)
			So(report.Stats.ResourcesFetched, ShouldEqual, 5)
			So(report.Stats.ImagesProbed, ShouldEqual, 5)
			So(report.Stats.ImagesFound, ShouldEqual, 5)
			So(report.Missing(), ShouldBeEmpty)
		})

		Convey("Then resources are reported in load order", func() {
			So(report.Resources, ShouldHaveLength, 5)
			So(report.Resources[0].Resource, ShouldEqual, "data/jugadores.json")
			So(report.Resources[0].Records, ShouldEqual, 1)
			So(report.Resources[4].Resource, ShouldEqual, "data/datos_contacto.json")
			So(report.Resources[4].Records, ShouldEqual, 2)
			So(report.Images[0].Candidate, ShouldEqual, "./img/jugadores/ana_perez.jpg")
			So(report.Images[len(report.Images)-1].Candidate, ShouldEqual, "./img/placeholder.jpg")
			So(out.String(), ShouldContainSubstring, "All 5 images resolved")
		})
	})

	Convey("Given a site with a broken resource and a missing image", t, func() {
		data := make(map[string]string, len(siteData))
		for k, v := range siteData {
			data[k] = v
		}
		data["/data/eventos.json"] = ""
		images := allImages()
		delete(images, "/img/galeria/mesas/a.jpg")

		srv := newSite(data, images)
		defer srv.Close()

		var out bytes.Buffer
		report, err := sitecheck.Run(context.Background(), &sitecheck.Config{
			BaseURL: srv.URL + "/",
			Workers: 3,
			Timeout: 2 * time.Second,
			Verbose: true,
			Out:     &out,
		})

		Convey("Then both problems are reported", func() {
			So(err, ShouldBeNil)
			So(report.OK(), ShouldBeFalse)
			So(report.Stats.ResourcesFailed, ShouldEqual, 1)
			So(report.Resources[3].OK(), ShouldBeFalse)
			So(report.Stats.ImagesProbed, ShouldEqual, 4)
			So(report.Stats.ImagesMissing, ShouldEqual, 1)
			So(report.Missing()[0].Candidate, ShouldEqual, "./img/galeria/mesas/a.jpg")
			So(report.Missing()[0].Source, ShouldEqual, "data/galeria.json")
		})

		Convey("Then the printed report names them", func() {
			So(out.String(), ShouldContainSubstring, "❌ data/eventos.json")
			So(out.String(), ShouldContainSubstring, "Missing images (1 of 4)")
			So(out.String(), ShouldContainSubstring, "./img/galeria/mesas/a.jpg (data/galeria.json)")
			So(out.String(), ShouldContainSubstring, "Probed images:")
		})
	})

	Convey("Given a relative base URL", t, func() {
		_, err := sitecheck.Run(context.Background(), &sitecheck.Config{BaseURL: "site", Out: &bytes.Buffer{}})

		Convey("Then the check does not start", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSetupLogging(t *testing.T) {
	Convey("Given a log file in a new directory", t, func() {
		path := t.TempDir() + "/logs/check.log"
		err := sitecheck.SetupLogging(path)
		defer func() { _ = logger.Init() }()

		Convey("Then the file is created", func() {
			So(err, ShouldBeNil)
			info, statErr := os.Stat(path)
			So(statErr, ShouldBeNil)
			So(info.Mode().Perm(), ShouldEqual, os.FileMode(0o600))
		})
	})
}
