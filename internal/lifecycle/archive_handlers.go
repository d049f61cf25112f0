package lifecycle

import (
	"context"

	"github.com/yasinhessnawi1/Forum_Backend/internal/archive"
	"github.com/yasinhessnawi1/Forum_Backend/internal/constants"
	"github.com/yasinhessnawi1/Forum_Backend/internal/events"
)

func archivePayload(payload any) (events.ArchiveUserDataPayload, error) {
	switch p := payload.(type) {
	case events.ArchiveUserDataPayload:
		if p.User != nil && p.Archiver != nil {
			return p, nil
		}
	case *events.ArchiveUserDataPayload:
		if p != nil && p.User != nil && p.Archiver != nil {
			return *p, nil
		}
	}
	return events.ArchiveUserDataPayload{}, unexpectedPayload(events.ArchiveUserData, payload)
}

// ArchiveDetails writes the account details data file.
func (h *Handlers) ArchiveDetails(ctx context.Context, payload any) error {
	p, err := archivePayload(payload)
	if err != nil {
		return err
	}

	joinedFromIP := constants.ArchiveUnavailableValue
	if p.User.JoinedFromIP != nil && *p.User.JoinedFromIP != "" {
		joinedFromIP = *p.User.JoinedFromIP
	}

	_, err = p.Archiver.WriteDataFile("details", archive.Fields{
		{Key: "Username", Value: p.User.Username},
		{Key: "E-mail", Value: p.User.Email},
		{Key: "Joined on", Value: p.User.JoinedOn},
		{Key: "Joined from ip", Value: joinedFromIP},
	})
	return err
}

// ArchiveProfileFields writes the filled-in profile fields keyed by their
// label. Nothing is written when the user filled in no configured field.
func (h *Handlers) ArchiveProfileFields(ctx context.Context, payload any) error {
	p, err := archivePayload(payload)
	if err != nil {
		return err
	}

	var fields archive.Fields
	for _, group := range h.deps.ProfileFields {
		for _, field := range group.Fields {
			if value := p.User.ProfileFields[field.Name]; value != "" {
				fields = append(fields, archive.Field{Key: field.Label, Value: value})
			}
		}
	}

	if len(fields) == 0 {
		return nil
	}

	_, err = p.Archiver.WriteDataFile("profile_fields", fields)
	return err
}

// ArchiveAvatar copies the avatar sources and every generated avatar size.
func (h *Handlers) ArchiveAvatar(ctx context.Context, payload any) error {
	p, err := archivePayload(payload)
	if err != nil {
		return err
	}

	collection, err := p.Archiver.CreateCollection("avatar")
	if err != nil {
		return err
	}

	if _, err := collection.WriteModelFile(p.User.AvatarTmp); err != nil {
		return err
	}
	if _, err := collection.WriteModelFile(p.User.AvatarSrc); err != nil {
		return err
	}

	avatars, err := h.deps.Avatars.ListForUser(ctx, p.User.ID)
	if err != nil {
		return err
	}
	for _, avatar := range avatars {
		if _, err := collection.WriteModelFile(avatar.Image); err != nil {
			return err
		}
	}

	return nil
}

// ArchiveAuditTrail writes one data file per audit trail row, named after
// the time it was recorded and holding the IP address.
func (h *Handlers) ArchiveAuditTrail(ctx context.Context, payload any) error {
	p, err := archivePayload(payload)
	if err != nil {
		return err
	}

	collection, err := p.Archiver.CreateCollection("audit_trail")
	if err != nil {
		return err
	}

	var afterID int64
	for {
		trails, err := h.deps.AuditTrails.ListForUser(ctx, p.User.ID, afterID, h.deps.AuditTrailChunkSize)
		if err != nil {
			return err
		}

		for _, trail := range trails {
			if _, err := collection.WriteDataFile(archive.TimeName(trail.CreatedAt), trail.IPAddress); err != nil {
				return err
			}
			afterID = trail.ID
		}

		if len(trails) < h.deps.AuditTrailChunkSize {
			return nil
		}
	}
}

// ArchiveNameHistory writes one data file per rename of the user.
func (h *Handlers) ArchiveNameHistory(ctx context.Context, payload any) error {
	p, err := archivePayload(payload)
	if err != nil {
		return err
	}

	collection, err := p.Archiver.CreateCollection("name_history")
	if err != nil {
		return err
	}

	changes, err := h.deps.NameChanges.ListForUser(ctx, p.User.ID)
	if err != nil {
		return err
	}

	for _, change := range changes {
		_, err := collection.WriteDataFile(archive.TimeName(change.ChangedOn), archive.Fields{
			{Key: "New username", Value: change.NewUsername},
			{Key: "Old username", Value: change.OldUsername},
		})
		if err != nil {
			return err
		}
	}

	return nil
}
