package fastview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second
	// Maximum message size allowed from peer.
	maxMessageSize = 8192

	// The rate at which ele-updates will be sent to the client, so as not to overburden it.
	pubResolution  = time.Millisecond * 100
	pingResolution = time.Millisecond * 500
	// The number of pings to tolerate losing before concluding the peer is gone.
	pongWait = pingResolution * 4
)

var upgrader = websocket.Upgrader{}

var (
	ErrPongDeadlineExceeded = errors.New("client disconnect, pong deadline exceeded")
	// ErrSockCongestion indicates there are too many waiters on the socket for a given op.
	ErrSockCongestion = errors.New("sock op failed due to congestion")
)

// Client publishes updates unidirectionally to a web client via websocket.
// Messages from the client are read only to process control frames.
type Client[T any] struct {
	updates <-chan T
	pongs   chan struct{}
	ws      *websock
	rootCtx context.Context
}

// NewClient upgrades the request to a websocket and returns a publisher of the
// passed updates. Items in the updates chan must be idempotent, such that intervening
// updates can be discarded when they arrive faster than the publication rate.
func NewClient[T any](
	updates <-chan T,
	w http.ResponseWriter,
	r *http.Request,
) (*Client[T], error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already replied to the client.
		return nil, fmt.Errorf("upgrade: %w", err)
	}
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))

	pongs := make(chan struct{}, 1)
	// Pong handlers run from ReadMessage, hence this requires readMessages to be running.
	ws.SetPongHandler(func(_ string) error {
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		select {
		case pongs <- struct{}{}:
		default:
		}
		return nil
	})

	return &Client[T]{
		updates: updates,
		pongs:   pongs,
		ws:      newWebSock(ws),
		rootCtx: r.Context(),
	}, nil
}

// Sync publishes updates until the client disconnects, the updates chan closes, or the
// request's context is done. It returns nil on any of these, and an error if something
// unexpected occurred. The websocket is closed before returning.
func (cli *Client[T]) Sync() error {
	defer cli.ws.Close()

	group, groupCtx := errgroup.WithContext(cli.rootCtx)
	ctx, cancel := context.WithCancel(groupCtx)
	defer cancel()

	group.Go(func() error {
		return cli.readMessages(ctx)
	})
	group.Go(func() error {
		return cli.pingPong(ctx)
	})
	group.Go(func() error {
		// Stop the other routines once there is nothing left to publish.
		defer cancel()
		return cli.publish(ctx)
	})

	err := group.Wait()
	if isClosure(err) {
		return nil
	}
	return err
}

// Runs the ping-pong for the client liveness check.
func (cli *Client[T]) pingPong(ctx context.Context) error {
	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			if err := cli.ping(ctx); err != nil {
				return err
			}
		case <-cli.pongs:
			lastPong = time.Now()
		}
	}
}

func (cli *Client[T]) ping(ctx context.Context) error {
	return cli.ws.Write(
		ctx,
		func(ws *websocket.Conn) error {
			err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			if isError(err) {
				return fmt.Errorf("ping failed: %w", err)
			}
			return err
		})
}

// readMessages drains messages from the client. Errors returned by websocket Read
// methods are permanent, hence any error must trigger full teardown.
func (cli *Client[T]) readMessages(ctx context.Context) error {
	for ctx.Err() == nil {
		err := cli.ws.Read(
			ctx,
			func(ws *websocket.Conn) (readErr error) {
				_, _, readErr = ws.ReadMessage()
				return
			})
		if errors.Is(err, ErrSockCongestion) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
	return nil
}

func (cli *Client[T]) publish(ctx context.Context) error {
	var lastSync time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case updates, ok := <-cli.updates:
			if !ok {
				return nil
			}
			// Drop updates when receiving too quickly.
			if time.Since(lastSync) < pubResolution {
				continue
			}

			lastSync = time.Now()
			err := cli.ws.Write(
				ctx,
				func(ws *websocket.Conn) error {
					if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
						return fmt.Errorf("failed to set deadline: %w", err)
					}
					if err := ws.WriteJSON(updates); err != nil {
						return fmt.Errorf("publish failed: %w", err)
					}
					return nil
				})
			if err != nil {
				return err
			}
		}
	}
}

func isError(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

func isClosure(err error) bool {
	return err != nil && websocket.IsCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived)
}

const (
	semWait          = time.Second
	closeGracePeriod = 100 * time.Millisecond
)

// websock serializes reads and writes to the websocket, which permits only one
// concurrent reader and one concurrent writer.
type websock struct {
	readSem  chan struct{}
	writeSem chan struct{}
	ws       *websocket.Conn
}

func newWebSock(ws *websocket.Conn) *websock {
	return &websock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		ws:       ws,
	}
}

// Close says goodbye to the peer and closes the websocket. Only the writer is
// acquired, since a blocked reader is released by closing the connection.
func (sock *websock) Close() {
	sock.writeSem <- struct{}{}
	defer func() { <-sock.writeSem }()

	_ = sock.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = sock.ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	_ = sock.ws.Close()
}

// Read serializes read operations on the internal web socket.
func (sock *websock) Read(
	ctx context.Context,
	readFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.readSem <- struct{}{}:
		defer func() { <-sock.readSem }()
		return readFn(sock.ws)
	case <-time.After(semWait):
		return ErrSockCongestion
	}
}

// Write serializes write operations to the websocket.
func (sock *websock) Write(
	ctx context.Context,
	writeFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.writeSem <- struct{}{}:
		defer func() { <-sock.writeSem }()
		return writeFn(sock.ws)
	case <-time.After(semWait):
		return ErrSockCongestion
	}
}
