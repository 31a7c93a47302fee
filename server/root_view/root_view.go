package root_view

import (
	"context"
	"html/template"
	"sync"
	"time"

	. "gridmdp/grid_world"
	"gridmdp/matrix"
	"gridmdp/server/cell_views"
	"gridmdp/server/fastview"

	channerics "github.com/niceyeti/channerics/channels"
)

// Rate at which merged view updates are batched before being sent.
const batchRate = time.Millisecond * 20

// RootView is the main page's index.html, which is the container for all the
// view components and the wiring for their channels.
type RootView struct {
	views   []fastview.ViewComponent
	updates <-chan []fastview.EleUpdate

	mu     sync.RWMutex
	latest [][]cell_views.Cell
}

// NewRootView creates the main page and the views it contains. The page is rendered
// from the latest snapshot received, starting with the initial one.
func NewRootView(
	ctx context.Context,
	initial *matrix.Matrix[Field],
	snapshots <-chan *matrix.Matrix[Field],
) (*RootView, error) {
	rv := &RootView{
		latest: cell_views.Convert(initial),
	}

	views, err := fastview.NewViewBuilder[*matrix.Matrix[Field], [][]cell_views.Cell](ctx).
		WithSource(snapshots, cell_views.Convert).
		Observe(rv.setLatest).
		WithView(func(
			done <-chan struct{},
			cellUpdates <-chan [][]cell_views.Cell) fastview.ViewComponent {
			return cell_views.NewValuesGrid(done, cellUpdates)
		}).
		Build()
	if err != nil {
		return nil, err
	}

	rv.views = views
	rv.updates = fanIn(ctx.Done(), views)
	return rv, nil
}

// Keeps the cells of each snapshot for rendering the page.
func (rv *RootView) setLatest(cells [][]cell_views.Cell) {
	rv.mu.Lock()
	rv.latest = cells
	rv.mu.Unlock()
}

// Latest returns the cells of the most recent snapshot, which the page template is executed with.
func (rv *RootView) Latest() [][]cell_views.Cell {
	rv.mu.RLock()
	defer rv.mu.RUnlock()
	return rv.latest
}

// Updates returns the main ele-update channel for all the views.
func (rv *RootView) Updates() <-chan []fastview.EleUpdate {
	return rv.updates
}

// Parse builds the main page's template, with websocket bootstrap code, and returns its name.
// It also sets up the func-map that child components depend on.
func (rv *RootView) Parse(
	parent *template.Template,
) (name string, err error) {
	rt := parent.Funcs(
		template.FuncMap{
			"add":  func(i, j int) int { return i + j },
			"sub":  func(i, j int) int { return i - j },
			"mult": func(i, j int) int { return i * j },
			"div":  func(i, j int) int { return i / j },
		})

	var bodySpec string
	for _, vc := range rv.views {
		var tname string
		if tname, err = vc.Parse(rt); err != nil {
			return
		}
		bodySpec += `{{ template "` + tname + `" . }}`
	}

	// The main template bootstraps the rest: sets up the client websocket and updates, aggregates views.
	name = "mainpage"
	indexTemplate := `
	{{ define "` + name + `" }}
	<!DOCTYPE html>
	<html>
		<head>
			<link rel="icon" href="data:,">
			<title>Grid world values</title>
			<!--The server pushes new data to the view via websocket.-->
			<script>
				const ws = new WebSocket("ws://" + location.host + "/ws");
				ws.onopen = function (event) {
					console.log("Web socket opened")
				};

				ws.onerror = function (event) {
					console.log('WebSocket error: ', event);
				};

				// When the server pushes view updates, find these eles and update them.
				ws.onmessage = function (event) {
					const items = JSON.parse(event.data)
					for (const update of items) {
						const ele = document.getElementById(update.EleId)
						if (ele === null) {
							continue
						}
						for (const op of update.Ops) {
							if (op.Key === "textContent") {
								ele.textContent = op.Value;
							} else {
								ele.setAttribute(op.Key, op.Value)
							}
						}
					}
				}
			</script>
		</head>
		<body>
		` + bodySpec + `
		</body></html>
	{{ end }}
	`

	_, err = rt.Parse(indexTemplate)
	return
}

// fanIn aggregates the views' ele-update channels into a single, batched channel.
func fanIn(
	done <-chan struct{},
	views []fastview.ViewComponent,
) <-chan []fastview.EleUpdate {
	inputs := make([]<-chan []fastview.EleUpdate, len(views))
	for i, view := range views {
		inputs[i] = view.Updates()
	}
	return batchify(
		done,
		channerics.Merge(done, inputs...),
		batchRate)
}

// batchify collects updates for the passed duration before sending them, overwriting
// previously received updates for the same ele-id, so that only the latest are sent.
// Anything pending when the source closes is flushed.
func batchify(
	done <-chan struct{},
	source <-chan []fastview.EleUpdate,
	rate time.Duration,
) <-chan []fastview.EleUpdate {
	output := make(chan []fastview.EleUpdate)

	go func() {
		defer close(output)

		data := map[string]fastview.EleUpdate{}
		// The first batch is sent immediately.
		var last time.Time
		send := func() bool {
			select {
			case output <- slicedVals(data):
				data = map[string]fastview.EleUpdate{}
				last = time.Now()
				return true
			case <-done:
				return false
			}
		}

		for updates := range channerics.OrDone(done, source) {
			for _, update := range updates {
				data[update.EleId] = update
			}
			if time.Since(last) > rate && len(data) > 0 {
				if !send() {
					return
				}
			}
		}
		if len(data) > 0 {
			send()
		}
	}()

	return output
}

// returns the values of a map as a slice
func slicedVals[T1 comparable, T2 any](mp map[T1]T2) (sliced []T2) {
	for _, v := range mp {
		sliced = append(sliced, v)
	}
	return
}
