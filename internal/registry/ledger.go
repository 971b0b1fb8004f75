package registry

import (
	"sort"
	"time"

	"gameday/backend/internal/models"
)

// upsertLedgerLocked keeps at most one open record per (user, room): a
// rejoin of a still-live room refreshes JoinedAt and RoomName instead of
// appending, so bouncing in and out does not grow the ledger.
func (r *Registry) upsertLedgerLocked(userID string, room *models.Room, now time.Time) {
	for _, rec := range r.ledgers[userID] {
		if rec.RoomID == room.ID && rec.ExpiredAt == nil {
			rec.JoinedAt = now
			rec.RoomName = room.Name
			return
		}
	}
	r.ledgers[userID] = append(r.ledgers[userID], &models.JoinRecord{
		RoomID:   room.ID,
		RoomName: room.Name,
		JoinedAt: now,
	})
}

// Ledger returns the user's join history, enriched and deduplicated:
//   - participants come from the live room's ever-joined set, or from the
//     archive snapshot once the room expired;
//   - expiry is the archive stamp, or "now" for a room that is expired but
//     not yet reaped, or the record's own stamp;
//   - multiple records for one room collapse to the greatest JoinedAt;
//   - newest joins first.
//
// Hard-deleted rooms never appear because Delete purges their records.
func (r *Registry) Ledger(userID string) []models.LedgerEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := r.now()

	byRoom := make(map[string]models.LedgerEntry)
	for _, rec := range r.ledgers[userID] {
		entry := models.LedgerEntry{
			RoomID:    rec.RoomID,
			RoomName:  rec.RoomName,
			JoinedAt:  rec.JoinedAt,
			ExpiredAt: rec.ExpiredAt,
		}
		if room, ok := r.rooms[rec.RoomID]; ok {
			entry.Participants = participantList(room.EverJoined)
			if room.Expired(now) {
				stamp := now
				entry.ExpiredAt = &stamp
			}
		} else if a, ok := r.archived[rec.RoomID]; ok {
			entry.Participants = a.ParticipantsEverJoined
			entry.ExpiredAt = &a.ExpiredAt
		} else {
			continue
		}
		if prev, ok := byRoom[rec.RoomID]; ok && prev.JoinedAt.After(entry.JoinedAt) {
			continue
		}
		byRoom[rec.RoomID] = entry
	}

	out := make([]models.LedgerEntry, 0, len(byRoom))
	for _, entry := range byRoom {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.After(out[j].JoinedAt) })
	return out
}
