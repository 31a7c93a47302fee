package fastview

import (
	"context"
	"errors"

	channerics "github.com/niceyeti/channerics/channels"
)

// ViewBuilder wires a source of snapshots to one or more views sharing a view-model.
// Each snapshot is converted once and the view-model is broadcast to every view.
// A snapshot supersedes all earlier ones, so a view that falls behind is only handed
// the newest view-model once it catches up; intermediate ones are dropped.
type ViewBuilder[Snapshot any, ViewModel any] struct {
	done      <-chan struct{}
	source    <-chan Snapshot
	convert   func(Snapshot) ViewModel
	observers []func(ViewModel)
	views     []ViewBuilderFunc[ViewModel]
}

// ViewBuilderFunc builds a view from a 'done' channel and its view-model channel.
type ViewBuilderFunc[ViewModel any] func(<-chan struct{}, <-chan ViewModel) ViewComponent

// ErrNoViews is returned when Build() is called before the caller has added any views.
var ErrNoViews error = errors.New("no views to build: WithView must be called")

// ErrNoSource is returned when Build() is called without a snapshot source.
var ErrNoSource error = errors.New("no snapshot source: WithSource must be called")

// NewViewBuilder returns a builder whose channels all close once ctx is done.
func NewViewBuilder[Snapshot any, ViewModel any](
	ctx context.Context,
) *ViewBuilder[Snapshot, ViewModel] {
	return &ViewBuilder[Snapshot, ViewModel]{done: ctx.Done()}
}

// WithSource sets the snapshot chan and the conversion of its snapshots to the view-model.
func (vb *ViewBuilder[Snapshot, ViewModel]) WithSource(
	source <-chan Snapshot,
	convert func(Snapshot) ViewModel,
) *ViewBuilder[Snapshot, ViewModel] {
	vb.source = source
	vb.convert = convert
	return vb
}

// Observe registers fn to be called with every view-model, before any view receives it.
// Observers run on the conversion goroutine and must not block.
func (vb *ViewBuilder[Snapshot, ViewModel]) Observe(
	fn func(ViewModel),
) *ViewBuilder[Snapshot, ViewModel] {
	vb.observers = append(vb.observers, fn)
	return vb
}

// WithView adds a view. Views are returned by Build in the order they were added.
func (vb *ViewBuilder[Snapshot, ViewModel]) WithView(
	builderFn ViewBuilderFunc[ViewModel],
) *ViewBuilder[Snapshot, ViewModel] {
	vb.views = append(vb.views, builderFn)
	return vb
}

// Build connects the source to every view and returns the views.
func (vb *ViewBuilder[Snapshot, ViewModel]) Build() (views []ViewComponent, err error) {
	if len(vb.views) == 0 {
		return nil, ErrNoViews
	}
	if vb.source == nil || vb.convert == nil {
		return nil, ErrNoSource
	}

	vmChan := channerics.Convert(vb.done, vb.source, func(snapshot Snapshot) ViewModel {
		vm := vb.convert(snapshot)
		for _, observe := range vb.observers {
			observe(vm)
		}
		return vm
	})
	vmChans := channerics.Broadcast(vb.done, vmChan, len(vb.views))
	for i, build := range vb.views {
		views = append(views, build(vb.done, newest(vb.done, vmChans[i])))
	}
	return
}

// newest relays the input, holding only the most recent item while the receiver is busy.
// A held item is still delivered after the input closes.
func newest[T any](done <-chan struct{}, input <-chan T) <-chan T {
	output := make(chan T)

	go func() {
		defer close(output)

		var held T
		holding := false
		for {
			// A nil chan never sends, so nothing is offered until an item is held.
			var out chan<- T
			if holding {
				out = output
			}

			select {
			case <-done:
				return
			case item, ok := <-input:
				if !ok {
					if holding {
						select {
						case output <- held:
						case <-done:
						}
					}
					return
				}
				held, holding = item, true
			case out <- held:
				holding = false
			}
		}
	}()

	return output
}
