package match

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"tap_duel/internal/assets"
	"tap_duel/internal/store"
)

const storeTimeout = 500 * time.Millisecond

type PlaylistID uint64

// PlaylistEntry is one playing one-shot sound.
type PlaylistEntry struct {
	ID     PlaylistID
	Key    string
	Handle Playback
}

// AudioManager tracks one-shot playbacks and the background track over a
// shared AudioContext. Mute and pause both suspend the whole context.
//
// Store reads and writes made after construction run on their own
// goroutines; the loop only ever sees their results.
type AudioManager struct {
	ctx      AudioContext
	store    Store
	muteKey  string
	log      *slog.Logger
	playlist []PlaylistEntry
	nextID   PlaylistID
	muted    bool
	paused   bool
	music    Playback

	bindSeq uint64 // bumped by Rebind and Mute; stale reads are dropped

	seqMu    sync.Mutex
	writeSeq uint64
	latest   map[string]uint64 // key -> newest write sequence
	ioMu     sync.Mutex        // serializes store writes
	writes   sync.WaitGroup
}

// NewAudioManager reads the persisted mute flag for displayName and applies
// it. Call it before the loop starts; the read is synchronous.
func NewAudioManager(ctx AudioContext, s Store, displayName string, log *slog.Logger) *AudioManager {
	m := &AudioManager{
		ctx:     ctx,
		store:   s,
		muteKey: store.Namespace(displayName) + "muted",
		log:     log,
		latest:  map[string]uint64{},
	}
	m.muted = m.readMuted(m.muteKey)
	m.apply()
	return m
}

// Rebind switches the persisted mute flag to another display name's
// namespace. The flag is read in the background and applied through post;
// applied then receives the new value. A Mute or Rebind in the meantime
// discards the read.
func (m *AudioManager) Rebind(displayName string, post func(func()), applied func(muted bool)) {
	key := store.Namespace(displayName) + "muted"
	m.muteKey = key
	m.bindSeq++
	seq := m.bindSeq

	go func() {
		muted := m.readMuted(key)
		post(func() {
			if seq != m.bindSeq {
				return
			}
			m.muted = muted
			m.apply()
			if applied != nil {
				applied(muted)
			}
		})
	}()
}

func (m *AudioManager) readMuted(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	v, err := m.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			m.log.Warn("read mute flag failed", "error", err)
		}
		return false
	}
	muted, _ := strconv.ParseBool(v)
	return muted
}

func (m *AudioManager) apply() {
	if m.muted || m.paused {
		m.ctx.Suspend()
	} else {
		m.ctx.Resume()
	}
}

// Playback starts sound under key and returns its playlist id.
func (m *AudioManager) Playback(key string, sound assets.Resource, opts PlayOptions) PlaylistID {
	m.nextID++
	id := m.nextID
	h := m.ctx.Play(sound, opts, func() { m.remove(id) })
	m.playlist = append(m.playlist, PlaylistEntry{ID: id, Key: key, Handle: h})
	return id
}

func (m *AudioManager) remove(id PlaylistID) {
	for i, e := range m.playlist {
		if e.ID == id {
			m.playlist = append(m.playlist[:i], m.playlist[i+1:]...)
			return
		}
	}
}

// StopPlayback stops every playing entry with exactly key and returns how
// many were stopped.
func (m *AudioManager) StopPlayback(key string) int {
	kept := m.playlist[:0]
	stopped := 0
	for _, e := range m.playlist {
		if e.Key == key {
			e.Handle.Pause()
			stopped++
			continue
		}
		kept = append(kept, e)
	}
	m.playlist = kept
	return stopped
}

// StopAll stops every playlist entry.
func (m *AudioManager) StopAll() {
	for _, e := range m.playlist {
		e.Handle.Pause()
	}
	m.playlist = nil
}

// Playing returns the number of playlist entries with key.
func (m *AudioManager) Playing(key string) int {
	n := 0
	for _, e := range m.playlist {
		if e.Key == key {
			n++
		}
	}
	return n
}

// Playlist returns a copy of the current entries.
func (m *AudioManager) Playlist() []PlaylistEntry {
	out := make([]PlaylistEntry, len(m.playlist))
	copy(out, m.playlist)
	return out
}

// Mute toggles the mute flag, applies it and persists it in the background,
// returning the new value.
func (m *AudioManager) Mute() bool {
	m.muted = !m.muted
	m.bindSeq++
	m.persist(m.muteKey, strconv.FormatBool(m.muted))
	m.apply()
	return m.muted
}

// persist writes value under key off the calling goroutine. Writes land in
// order; one overtaken by a newer write to the same key is skipped.
func (m *AudioManager) persist(key, value string) {
	m.seqMu.Lock()
	m.writeSeq++
	seq := m.writeSeq
	m.latest[key] = seq
	m.seqMu.Unlock()

	m.writes.Add(1)
	go func() {
		defer m.writes.Done()
		m.ioMu.Lock()
		defer m.ioMu.Unlock()

		m.seqMu.Lock()
		current := m.latest[key] == seq
		m.seqMu.Unlock()
		if !current {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := m.store.Set(ctx, key, value); err != nil {
			m.log.Warn("persist mute flag failed", "error", err)
		}
	}()
}

// Flush blocks until every pending store write has finished. Call it off
// the loop, for example after the loop stops.
func (m *AudioManager) Flush() {
	m.writes.Wait()
}

func (m *AudioManager) Muted() bool {
	return m.muted
}

// SetPaused suspends or resumes the context independently of mute.
func (m *AudioManager) SetPaused(paused bool) {
	m.paused = paused
	m.apply()
}

// StartMusic starts the looping background track unless it is already set
// or audio is muted.
func (m *AudioManager) StartMusic(sound assets.Resource) bool {
	if m.music != nil || m.muted {
		return false
	}
	m.music = m.ctx.Play(sound, PlayOptions{Loop: true, Volume: 1}, func() { m.music = nil })
	return true
}

// StopMusic pauses and clears the background track.
func (m *AudioManager) StopMusic() {
	if m.music == nil {
		return
	}
	m.music.Pause()
	m.music = nil
}

func (m *AudioManager) MusicPlaying() bool {
	return m.music != nil
}
