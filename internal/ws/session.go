package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"tap_duel/internal/config"
	"tap_duel/internal/logger"
	"tap_duel/internal/loop"
	"tap_duel/internal/match"
	"tap_duel/internal/metrics"
	"tap_duel/internal/render"
	"tap_duel/internal/service"
	"tap_duel/internal/store"
)

const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
	AssetBase     = "/assets"
)

// Outbox is where a session writes encoded messages. *Client implements it.
type Outbox interface {
	Enqueue(msg []byte, droppable bool) bool
	Close()
}

// SessionConfig is shared by every session a Hub opens.
type SessionConfig struct {
	Match     config.MatchConfig
	Store     store.KV
	Loader    match.Loader
	History   *service.HistoryService
	RefreshHz int
	AssetBase string
}

// Session runs one match for one connected device. All game state is owned
// by the session loop; HandleMessage may be called from the socket reader.
type Session struct {
	ID       string
	DeviceID string

	cfg     SessionConfig
	out     Outbox
	loop    *loop.Loop
	game    *match.Game
	surface *render.Recorder
	overlay *RemoteOverlay
	audio   *RemoteAudio
	log     *slog.Logger

	createdAt  time.Time
	lastActive atomic.Int64

	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func NewSession(id, deviceID string, out Outbox, cfg SessionConfig, width, height, fontSize float64) *Session {
	if !validSize(width) || !validSize(height) {
		width, height = DefaultWidth, DefaultHeight
	}
	if !validSize(fontSize) {
		fontSize = DefaultFontSize
	}
	if cfg.AssetBase == "" {
		cfg.AssetBase = AssetBase
	}
	if cfg.Store == nil {
		cfg.Store = store.NewMemory()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:        id,
		DeviceID:  deviceID,
		cfg:       cfg,
		out:       out,
		loop:      loop.New(cfg.RefreshHz),
		surface:   render.NewRecorder(width, height),
		log:       logger.With("session", id, "device_id", deviceID),
		createdAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	s.touch()
	s.overlay = NewRemoteOverlay(s.emit, fontSize)
	s.audio = NewRemoteAudio(s.emit, cfg.AssetBase)

	s.game = match.New(cfg.Match, match.Options{
		Runtime: s.loop,
		Display: s.loop,
		Surface: s.surface,
		Overlay: s.overlay,
		Audio:   s.audio,
		Store:   store.NewScoped(cfg.Store, "device:"+deviceID+":"),
		Loader:  cfg.Loader,
		Logger:  s.log,
		Hooks: match.Hooks{
			OnTransition: s.onTransition,
			OnScore:      s.onScore,
			OnWin:        s.onWin,
			OnLoadError:  s.onLoadError,
			OnFrame:      s.onFrame,
		},
	})
	return s
}

// Run drives the session until parent is done or Close is called. The game
// is started on the loop and torn down on it.
func (s *Session) Run(parent context.Context) {
	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()

	stop := context.AfterFunc(parent, s.Close)
	defer stop()

	s.log.Info("session started")
	s.loop.Post(s.start)
	_ = s.loop.Run(s.ctx)

	s.game.Close()
	s.game.Audio().Flush()
	s.out.Close()
	close(s.done)
	s.log.Info("session ended", "lifetime", time.Since(s.createdAt).Round(time.Millisecond).String())
}

func (s *Session) start() {
	w, h := s.surface.Size()
	s.emit(ReadyMessage{Type: MsgReady, Session: s.ID, Width: w, Height: h, RefreshHz: s.refreshHz()})
	s.emit(assetsMessage(s.cfg.AssetBase, s.cfg.Match.Images, s.cfg.Match.Sounds))
	s.game.Load()
}

func (s *Session) refreshHz() int {
	if s.cfg.RefreshHz <= 0 {
		return loop.DefaultRefreshHz
	}
	return s.cfg.RefreshHz
}

// Close stops the session. Safe from any goroutine and more than once.
func (s *Session) Close() {
	s.closeOnce.Do(s.cancel)
}

func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) touch() { s.lastActive.Store(time.Now().UnixNano()) }

// Idle is how long since the client last sent anything.
func (s *Session) Idle(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastActive.Load()))
}

// Do runs fn on the session loop and waits for it.
func (s *Session) Do(ctx context.Context, fn func(g *match.Game)) error {
	return s.loop.Do(ctx, func() { fn(s.game) })
}

func (s *Session) emit(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Error("marshal outbound message failed", "error", err)
		return
	}
	_, frame := v.(FrameMessage)
	if s.out.Enqueue(b, frame) {
		if frame {
			metrics.FramesSent.Inc()
		}
		return
	}
	if frame {
		metrics.FramesDropped.Inc()
	}
}

type inboundHandler func(s *Session, payload []byte) error

var inboundHandlers = map[string]inboundHandler{
	MsgInput:      handleInput,
	MsgControl:    handleControl,
	MsgAudioEnded: handleAudioEnded,
	MsgResize:     handleResize,
	MsgConfigure:  handleConfigure,
}

// HandleMessage decodes one client message and queues it for the loop.
func (s *Session) HandleMessage(raw []byte) {
	s.touch()

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.log.Debug("bad inbound message", "error", err)
		s.loop.Post(func() { s.emit(errorMessage("invalid message")) })
		return
	}
	h, ok := inboundHandlers[env.Type]
	if !ok {
		s.loop.Post(func() { s.emit(errorMessage("unknown message type: " + env.Type)) })
		return
	}
	if err := h(s, raw); err != nil {
		s.log.Debug("rejected inbound message", "type", env.Type, "error", err)
		msg := err.Error()
		s.loop.Post(func() { s.emit(errorMessage(msg)) })
	}
}

func handleInput(s *Session, raw []byte) error {
	var m InputMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return errInvalid(MsgInput)
	}
	ev, ok := m.Event()
	if !ok {
		return errUnknownInput
	}
	s.loop.Post(func() { s.game.Dispatch(ev) })
	return nil
}

func handleControl(s *Session, raw []byte) error {
	var m ControlMessage
	if err := json.Unmarshal(raw, &m); err != nil || m.ID == "" {
		return errInvalid(MsgControl)
	}
	s.loop.Post(func() {
		s.game.Dispatch(match.Event{Kind: match.InputControl, Control: m.ID})
	})
	return nil
}

func handleAudioEnded(s *Session, raw []byte) error {
	var m AudioEndedMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return errInvalid(MsgAudioEnded)
	}
	s.loop.Post(func() { s.audio.Ended(m.ID) })
	return nil
}

// handleResize records the new size and asks the browser to reload, which
// reconnects and lays the match out again.
func handleResize(s *Session, raw []byte) error {
	var m ResizeMessage
	if err := json.Unmarshal(raw, &m); err != nil || !validSize(m.Width) || !validSize(m.Height) {
		return errInvalid(MsgResize)
	}
	s.loop.Post(func() {
		s.surface.Resize(m.Width, m.Height)
		if validSize(m.FontSize) {
			s.overlay.SetFontSize(m.FontSize)
		}
		s.emit(Message{Type: MsgReload})
	})
	return nil
}

func handleConfigure(s *Session, raw []byte) error {
	var m ConfigureMessage
	if err := json.Unmarshal(raw, &m); err != nil || len(m.Config) == 0 {
		return errInvalid(MsgConfigure)
	}
	cfg, err := config.ParseMatch(m.Config)
	if err != nil {
		return err
	}
	s.loop.Post(func() {
		s.cfg.Match = cfg
		s.emit(assetsMessage(s.cfg.AssetBase, cfg.Images, cfg.Sounds))
		s.game.Reconfigure(cfg)
	})
	return nil
}

func (s *Session) onTransition(from, to match.LifecycleState) {
	metrics.Transitions.WithLabelValues(from.String(), to.String()).Inc()
	st := s.game.State()
	s.emit(StateMessage{
		Type:     MsgState,
		State:    to.String(),
		Previous: from.String(),
		Paused:   st.Paused,
		Muted:    st.Muted,
	})
}

func (s *Session) onScore(player, score int) {
	metrics.PointsScored.WithLabelValues(strconv.Itoa(player)).Inc()
}

func (s *Session) onWin(r match.Result) {
	metrics.MatchesFinished.WithLabelValues(strconv.Itoa(r.Winner)).Inc()
	if !r.StartedAt.IsZero() {
		metrics.MatchDuration.Observe(r.Duration().Seconds())
	}
	s.cfg.History.Record(s.DeviceID, r)
	s.log.Info("match finished", "winner", r.WinnerName, "score1", r.Score1, "score2", r.Score2)
	s.emit(ResultMessage{Type: MsgResult, Result: r})
}

func (s *Session) onLoadError(err error) {
	metrics.AssetLoadFailures.Inc()
	s.emit(errorMessage("asset load failed: " + err.Error()))
}

func (s *Session) onFrame(f match.FrameInfo) {
	s.emit(FrameMessage{Type: MsgFrame, DeltaMs: f.DeltaMs(), Ops: s.surface.Flush()})
}
