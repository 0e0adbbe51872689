package imageprobe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/okian/montpellier/internal/adapters/imageprobe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolver(t *testing.T) {
	Convey("Given a site with some images", t, func() {
		var hits atomic.Int64
		mux := http.NewServeMux()
		mux.HandleFunc("/img/jugadores/ana.jpg", func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.Header().Set("Content-Type", "image/jpeg")
		})
		mux.HandleFunc("/img/menu/bebidas/agua.jpg", func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.Header().Set("Content-Type", "image/png; charset=binary")
		})
		mux.HandleFunc("/img/eventos/html.jpg", func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
		})
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			http.NotFound(w, r)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		r, err := imageprobe.NewResolver(srv.URL+"/", imageprobe.WithPlaceholder("./img/ph.jpg"))
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("Then existing images resolve to themselves", func() {
			So(r.Exists(ctx, "./img/jugadores/ana.jpg"), ShouldBeTrue)
			So(r.Resolve(ctx, "./img/jugadores/ana.jpg"), ShouldEqual, "./img/jugadores/ana.jpg")
		})

		Convey("Then HEAD rejections fall back to GET", func() {
			So(r.Exists(ctx, "./img/menu/bebidas/agua.jpg"), ShouldBeTrue)
			So(hits.Load(), ShouldEqual, 2)
		})

		Convey("Then non-image and missing answers resolve to the placeholder", func() {
			So(r.Resolve(ctx, "./img/eventos/html.jpg"), ShouldEqual, "./img/ph.jpg")
			So(r.Resolve(ctx, "./img/eventos/nada.jpg"), ShouldEqual, "./img/ph.jpg")
			So(r.Placeholder(), ShouldEqual, "./img/ph.jpg")
		})

		Convey("Then nothing is cached between calls", func() {
			r.Exists(ctx, "./img/jugadores/ana.jpg")
			r.Exists(ctx, "./img/jugadores/ana.jpg")
			So(hits.Load(), ShouldEqual, 2)
		})

		Convey("Then Probe yields one value and closes", func() {
			ch := r.Probe(ctx, "./img/jugadores/ana.jpg")
			v, ok := <-ch
			So(ok, ShouldBeTrue)
			So(v, ShouldBeTrue)
			_, ok = <-ch
			So(ok, ShouldBeFalse)
		})

		Convey("Then a cancelled context counts as missing", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			So(r.Exists(cctx, "./img/jugadores/ana.jpg"), ShouldBeFalse)
		})
	})

	Convey("Given an unreachable origin", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		base := srv.URL + "/"
		srv.Close()
		r, err := imageprobe.NewResolver(base)
		So(err, ShouldBeNil)

		Convey("Then the default placeholder is used", func() {
			So(r.Resolve(context.Background(), "./img/x.jpg"), ShouldEqual, "./img/placeholder.jpg")
		})
	})
}
