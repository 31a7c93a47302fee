package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "gridmdp/grid_world"
	"gridmdp/matrix"
	"gridmdp/server/fastview"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStatus(t *testing.T) {
	Convey("Status reports the latest sweep", t, func() {
		status := NewStatus()
		So(status.Report(), ShouldResemble, StatusReport{})

		status.Record(1, 1.08)
		status.Record(2, 0.5)
		So(status.Report(), ShouldResemble, StatusReport{Sweeps: 2, LastError: 0.5})

		status.Finish(true)
		So(status.Report(), ShouldResemble, StatusReport{Sweeps: 2, LastError: 0.5, Converged: true, Finished: true})
	})
}

func TestServer(t *testing.T) {
	Convey("Given a server", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		logger, _ := test.NewNullLogger()
		logger.SetLevel(logrus.DebugLevel)

		initial := matrix.New(Field{Cell: Normal(0), Policy: Down}, 4, 3)
		initial.Write(3, 0, Field{Cell: Terminal(1)})
		snapshots := make(chan *matrix.Matrix[Field])
		status := NewStatus()

		server, err := NewServer(ctx, "localhost:0", initial, snapshots, status, logger)
		So(err, ShouldBeNil)

		httpServer := httptest.NewServer(server)
		defer httpServer.Close()

		get := func(path string) (*http.Response, string) {
			resp, err := http.Get(httpServer.URL + path)
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			body, err := io.ReadAll(resp.Body)
			So(err, ShouldBeNil)
			return resp, string(body)
		}

		Convey("The index page shows the grid", func() {
			resp, body := get("/")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			So(resp.Header.Get("Content-Type"), ShouldStartWith, "text/html")
			So(body, ShouldContainSubstring, `id="valuesgrid"`)
			So(body, ShouldContainSubstring, `id="3-2-value-text"`)
			So(body, ShouldContainSubstring, "1.000")
		})

		Convey("The status endpoint reports progress", func() {
			status.Record(7, 0.25)
			resp, body := get("/api/status")
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var report StatusReport
			So(json.Unmarshal([]byte(body), &report), ShouldBeNil)
			So(report, ShouldResemble, StatusReport{Sweeps: 7, LastError: 0.25})
		})

		Convey("Unknown paths and methods are refused", func() {
			resp, _ := get("/nope")
			So(resp.StatusCode, ShouldEqual, http.StatusNotFound)

			resp, err := http.Post(httpServer.URL+"/", "text/plain", strings.NewReader(""))
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("Websocket clients receive snapshots as element updates", func() {
			wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			So(err, ShouldBeNil)
			defer conn.Close()

			next := initial.Clone()
			next.Write(0, 0, Field{Cell: Normal(0.5), Policy: Right})
			go func() {
				select {
				case snapshots <- next:
				case <-ctx.Done():
				}
			}()

			_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			var updates []fastview.EleUpdate
			So(conn.ReadJSON(&updates), ShouldBeNil)
			So(updates, ShouldContain, fastview.EleUpdate{
				EleId: "0-0-value-text",
				Ops:   []fastview.Op{{Key: "textContent", Value: "0.500"}},
			})
			So(updates, ShouldContain, fastview.EleUpdate{
				EleId: "0-0-policy-arrow",
				Ops:   []fastview.Op{{Key: "transform", Value: "rotate(90)"}},
			})

			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		})
	})
}

func TestServe(t *testing.T) {
	Convey("Serve returns once its context is done", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		logger, _ := test.NewNullLogger()

		server, err := NewServer(ctx, "localhost:0", matrix.New(Field{}, 1, 1),
			make(chan *matrix.Matrix[Field]), NewStatus(), logger)
		So(err, ShouldBeNil)

		errs := make(chan error, 1)
		go func() {
			errs <- server.Serve(ctx)
		}()
		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err = <-errs:
			So(err, ShouldBeNil)
		case <-time.After(5 * time.Second):
			So("timed out", ShouldBeEmpty)
		}
	})
}
