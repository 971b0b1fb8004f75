package registry

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"gameday/backend/internal/config"
	"gameday/backend/internal/models"
)

var (
	// ErrNotFound means the room id is neither live nor archived.
	ErrNotFound = errors.New("registry: room not found")
	// ErrExpired means the targeted room's expiry had passed. The room has
	// already been archived by the time this is returned; callers signal the
	// client instead of completing the operation.
	ErrExpired = errors.New("registry: room expired")
	// ErrEmptyMessage means an append carried no text. Dropped silently at
	// the event layer.
	ErrEmptyMessage = errors.New("registry: empty message")
	// ErrProtected means an attempt to delete the lobby.
	ErrProtected = errors.New("registry: room is protected")
)

// Registry owns all in-memory chat state: the live rooms, the archive of
// expired rooms, and the per-user join ledgers. It is constructed once at
// process start and injected into the hub, the reaper, and the handlers.
//
// gin handlers and the hub loop run on separate goroutines, so the three
// maps are guarded by one RWMutex.
type Registry struct {
	mu       sync.RWMutex
	now      func() time.Time
	rooms    map[string]*models.Room
	archived map[string]*models.ArchivedRoom
	ledgers  map[string][]*models.JoinRecord
}

func New() *Registry {
	return NewWithClock(time.Now)
}

// NewWithClock injects the time source, which tests use to advance expiry
// without sleeping.
func NewWithClock(now func() time.Time) *Registry {
	return &Registry{
		now:      now,
		rooms:    make(map[string]*models.Room),
		archived: make(map[string]*models.ArchivedRoom),
		ledgers:  make(map[string][]*models.JoinRecord),
	}
}

// CreateRoom installs a new live room. An empty desiredID generates one from
// the name; a zero expiresAt applies the default TTL. Passing desiredID
// directly avoids the create-under-random-id-then-rekey dance and the
// double-registration bugs that come with it.
func (r *Registry) CreateRoom(name, desiredID string, expiresAt time.Time) *models.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(name, desiredID, expiresAt)
}

func (r *Registry) createLocked(name, desiredID string, expiresAt time.Time) *models.Room {
	now := r.now()
	if expiresAt.IsZero() {
		expiresAt = now.Add(config.RoomTTL)
	}
	id := desiredID
	if id == "" {
		id = newRoomID(name)
	}
	room := &models.Room{
		ID:           id,
		Name:         name,
		CreatedAt:    now,
		ExpiresAt:    expiresAt,
		Participants: make(map[string]models.Participant),
		EverJoined:   make(map[string]models.Participant),
	}
	r.rooms[id] = room
	return room
}

// GetOrCreateFixed resolves a well-known singleton room. A live, unexpired
// room under fixedID is returned as is; an expired one is archived and a
// fresh room is reinstalled under the same id, so concurrent joins converge
// on one instance. The second return value reports whether a room was
// (re)created.
func (r *Registry) GetOrCreateFixed(fixedID, displayName string) (*models.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateFixedLocked(fixedID, displayName)
}

func (r *Registry) getOrCreateFixedLocked(fixedID, displayName string) (*models.Room, bool) {
	if room, ok := r.rooms[fixedID]; ok {
		if !room.Expired(r.now()) {
			return room, false
		}
		r.archiveLocked(room)
	}
	return r.createLocked(displayName, fixedID, time.Time{}), true
}

// FindLiveByName returns a non-expired room whose display name matches
// case-insensitively, or nil. Used to dedupe explicit creation requests.
func (r *Registry) FindLiveByName(name string) *models.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := r.now()
	for _, room := range r.rooms {
		if !room.Expired(now) && strings.EqualFold(room.Name, name) {
			return room
		}
	}
	return nil
}

// JoinResult is the state a joining session needs, snapshotted under the
// registry lock so history precedes any message appended after the join.
type JoinResult struct {
	Room         *models.Room
	History      []models.Message
	Participants []models.Participant
	// Created reports that this join created the room, so the room list
	// changed.
	Created bool
}

// Join resolves roomID (creating the room under exactly the requested id if
// it does not exist, or reviving the lobby singleton), registers the
// participant in the occupancy and ever-joined maps, and upserts the user's
// ledger. Joining an expired room archives it and returns ErrExpired.
func (r *Registry) Join(roomID, userID, name string) (*JoinResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		room    *models.Room
		created bool
	)
	if roomID == config.LobbyRoomID {
		room, created = r.getOrCreateFixedLocked(config.LobbyRoomID, config.LobbyRoomName)
	} else if existing, ok := r.rooms[roomID]; ok {
		room = existing
	} else {
		room = r.createLocked(baseName(roomID), roomID, time.Time{})
		created = true
	}

	now := r.now()
	if room.Expired(now) {
		r.archiveLocked(room)
		return nil, ErrExpired
	}

	p := models.Participant{ID: userID, Name: name}
	room.Participants[userID] = p
	room.EverJoined[userID] = p
	r.upsertLedgerLocked(userID, room, now)

	return &JoinResult{
		Room:         room,
		History:      append([]models.Message(nil), room.Messages...),
		Participants: participantList(room.Participants),
		Created:      created,
	}, nil
}

// Leave removes the participant from the room's current occupancy only;
// ever-joined history stays. Returns the remaining occupancy and whether the
// room was live.
func (r *Registry) Leave(roomID, userID string) ([]models.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, false
	}
	delete(room.Participants, userID)
	return participantList(room.Participants), true
}

// Append records a chat message. Empty text is rejected; an expired room is
// archived on the spot and the append fails with ErrExpired.
func (r *Registry) Append(roomID, author, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	now := r.now()
	if room.Expired(now) {
		r.archiveLocked(room)
		return nil, ErrExpired
	}
	msg := models.Message{Author: author, Text: text, Timestamp: now}
	room.Messages = append(room.Messages, msg)
	return &msg, nil
}

// Archive moves a live room into the archive: snapshot of EverJoined, stamped
// archival time, open ledger records closed. Idempotent — an id that is not
// live is a no-op.
func (r *Registry) Archive(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[roomID]; ok {
		r.archiveLocked(room)
	}
}

func (r *Registry) archiveLocked(room *models.Room) {
	now := r.now()
	r.archived[room.ID] = &models.ArchivedRoom{
		ID:                     room.ID,
		Name:                   room.Name,
		CreatedAt:              room.CreatedAt,
		ExpiredAt:              now,
		ParticipantsEverJoined: participantList(room.EverJoined),
	}
	delete(r.rooms, room.ID)
	for _, records := range r.ledgers {
		for _, rec := range records {
			if rec.RoomID == room.ID && rec.ExpiredAt == nil {
				stamp := now
				rec.ExpiredAt = &stamp
			}
		}
	}
}

// ArchiveExpired sweeps every expired live room into the archive and returns
// the archived ids. Called by the reaper on its interval.
func (r *Registry) ArchiveExpired() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	var expired []*models.Room
	for _, room := range r.rooms {
		if room.Expired(now) {
			expired = append(expired, room)
		}
	}
	ids := make([]string, 0, len(expired))
	for _, room := range expired {
		r.archiveLocked(room)
		ids = append(ids, room.ID)
	}
	return ids
}

// GetArchived returns the archived summary for id, or nil.
func (r *Registry) GetArchived(id string) *models.ArchivedRoom {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.archived[id]
}

// Delete removes a room by id, live or archived, and purges every ledger
// entry referencing it across all users. The lobby cannot be deleted.
func (r *Registry) Delete(id string) error {
	if id == config.LobbyRoomID {
		return ErrProtected
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, live := r.rooms[id]
	_, arch := r.archived[id]
	if !live && !arch {
		return ErrNotFound
	}
	delete(r.rooms, id)
	delete(r.archived, id)
	for userID, records := range r.ledgers {
		kept := records[:0]
		for _, rec := range records {
			if rec.RoomID != id {
				kept = append(kept, rec)
			}
		}
		if len(kept) == 0 {
			delete(r.ledgers, userID)
		} else {
			r.ledgers[userID] = kept
		}
	}
	return nil
}

// ListRooms returns the live, unexpired rooms, newest created first.
func (r *Registry) ListRooms() []models.RoomSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := r.now()
	out := make([]models.RoomSummary, 0, len(r.rooms))
	for _, room := range r.rooms {
		if room.Expired(now) {
			continue
		}
		out = append(out, models.RoomSummary{
			ID:               room.ID,
			Name:             room.Name,
			CreatedAt:        room.CreatedAt,
			ExpiresAt:        room.ExpiresAt,
			ParticipantCount: len(room.Participants),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Get returns a detail view of a live or archived room.
func (r *Registry) Get(id string) (*models.RoomDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if room, ok := r.rooms[id]; ok {
		return &models.RoomDetail{
			ID:           room.ID,
			Name:         room.Name,
			CreatedAt:    room.CreatedAt,
			ExpiresAt:    &room.ExpiresAt,
			Participants: participantList(room.Participants),
		}, nil
	}
	if a, ok := r.archived[id]; ok {
		return &models.RoomDetail{
			ID:           a.ID,
			Name:         a.Name,
			CreatedAt:    a.CreatedAt,
			Archived:     true,
			ExpiredAt:    &a.ExpiredAt,
			Participants: a.ParticipantsEverJoined,
		}, nil
	}
	return nil, ErrNotFound
}

func participantList(m map[string]models.Participant) []models.Participant {
	out := make([]models.Participant, 0, len(m))
	for _, p := range m {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
