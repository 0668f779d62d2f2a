package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/Call/internal/app/orch"
	"github.com/dkeye/Call/internal/core"
	"github.com/dkeye/Call/internal/domain"
	"github.com/dkeye/Call/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"
)

const (
	defaultSendQueue   = 64
	defaultAuthTimeout = 5 * time.Second
	writeWait          = 5 * time.Second
)

type Options struct {
	ICEServers        []webrtc.ICEServer
	SendQueue         int
	ReadLimit         int64
	PingPeriod        time.Duration
	AuthTimeout       time.Duration
	RequestsPerMinute int
}

type SignalWSController struct {
	Orch     *orch.Orchestrator
	Identity core.IdentityGateway
	Metrics  *metrics.Metrics

	opts     Options
	limiter  *CallRateLimiter
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, ids core.IdentityGateway, m *metrics.Metrics, opts Options) *SignalWSController {
	if opts.SendQueue <= 0 {
		opts.SendQueue = defaultSendQueue
	}
	if opts.AuthTimeout <= 0 {
		opts.AuthTimeout = defaultAuthTimeout
	}
	return &SignalWSController{
		Orch:     o,
		Identity: ids,
		Metrics:  m,
		opts:     opts,
		limiter:  NewCallRateLimiter(opts.RequestsPerMinute),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// WsSignalConn is the transport endpoint of one client.
// It implements core.SignalConnection.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// Close stops accepting frames. Frames already queued are still written
// before the write pump closes the socket.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// connState is owned by the read pump of one connection.
type connState struct {
	trace string
	conn  *WsSignalConn
	user  *domain.User
}

func (st *connState) uid() string {
	if st.user == nil {
		return ""
	}
	return string(st.user.UID)
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	trace := c.GetString("client_token")
	log.Info().Str("module", "signal").Str("trace", trace).Msg("new WS connection")

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	if ctl.opts.ReadLimit > 0 {
		ws.SetReadLimit(ctl.opts.ReadLimit)
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.opts.SendQueue),
	}
	st := &connState{trace: trace, conn: conn}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, st)
}
