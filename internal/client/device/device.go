// Package device manages the per-installation device identity: a UUID
// generated once, persisted locally and attached to every API request so the
// server can scope files without an authentication system.
package device

import (
	"context"
	"fmt"
	"regexp"

	"github.com/dmitrijs2005/filedrop/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/filedrop/internal/common"
	"github.com/dmitrijs2005/filedrop/internal/logging"
	"github.com/google/uuid"
)

const deviceIDKey = "device_id"

var uuidFormat = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Provider reads and writes the device identifier through the durable
// key-value store.
type Provider struct {
	kv  metadata.Repository
	log logging.Logger
}

func NewProvider(kv metadata.Repository, log logging.Logger) *Provider {
	return &Provider{kv: kv, log: log}
}

// GetDeviceID returns the stored device id, generating and persisting a new
// one on first call.
//
// Degraded mode: if the persistence layer fails (on read or on write), a
// fresh identifier is returned without being stored, so the caller can still
// proceed. Identity is not stable across calls while persistence is broken;
// each failing call yields a new id.
func (p *Provider) GetDeviceID(ctx context.Context) string {
	value, err := p.kv.Get(ctx, deviceIDKey)
	if err != nil {
		id := uuid.NewString()
		p.log.Warn(ctx, "device id store unreadable, using ephemeral id", "error", err)
		return id
	}
	if len(value) > 0 {
		return string(value)
	}

	id := uuid.NewString()
	if err := p.kv.Set(ctx, deviceIDKey, []byte(id)); err != nil {
		p.log.Warn(ctx, "device id not persisted, using ephemeral id", "error", err)
	}
	return id
}

// SetDeviceID overwrites the stored identifier, e.g. when migrating from
// another installation. The value must be a 36-character UUID in the
// standard 8-4-4-4-12 form.
func (p *Provider) SetDeviceID(ctx context.Context, id string) error {
	if !uuidFormat.MatchString(id) {
		return fmt.Errorf("%w: %q", common.ErrInvalidDeviceID, id)
	}
	if err := p.kv.Set(ctx, deviceIDKey, []byte(id)); err != nil {
		return fmt.Errorf("failed to store device id: %w", err)
	}
	return nil
}

// ClearDeviceID removes the stored identifier unconditionally. The next
// GetDeviceID call generates a new one.
func (p *Provider) ClearDeviceID(ctx context.Context) error {
	if err := p.kv.Delete(ctx, deviceIDKey); err != nil {
		return fmt.Errorf("failed to clear device id: %w", err)
	}
	return nil
}
