package protocol

import (
	"fmt"

	"github.com/automoto/anticipation-mp/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
)

// Sync ID constants - ID 1 is reserved by necs for NetworkId
const (
	SyncIDNetIdentity    uint = 10
	SyncIDNetTransform   uint = 11
	SyncIDNetPlayer      uint = 12
	SyncIDNetPlatform    uint = 13
	SyncIDNetValues      uint = 14
	SyncIDNetServerClock uint = 15
)

// RegisterComponents registers all network components with necs for serialization.
// This must be called by both server and client before any network operations.
// Nothing is registered with an interpolation function: transforms are
// interpolated by the client's own buffered interpolators.
func RegisterComponents() error {
	if err := esync.RegisterComponent(SyncIDNetIdentity, netcomponents.NetIdentityData{}, netcomponents.NetIdentity); err != nil {
		return fmt.Errorf("register identity: %w", err)
	}
	if err := esync.RegisterComponent(SyncIDNetTransform, netcomponents.NetTransformData{}, netcomponents.NetTransform); err != nil {
		return fmt.Errorf("register transform: %w", err)
	}
	if err := esync.RegisterComponent(SyncIDNetPlayer, netcomponents.NetPlayerData{}, netcomponents.NetPlayer); err != nil {
		return fmt.Errorf("register player: %w", err)
	}
	if err := esync.RegisterComponent(SyncIDNetPlatform, netcomponents.NetPlatformData{}, netcomponents.NetPlatform); err != nil {
		return fmt.Errorf("register platform: %w", err)
	}
	if err := esync.RegisterComponent(SyncIDNetValues, netcomponents.NetValuesData{}, netcomponents.NetValues); err != nil {
		return fmt.Errorf("register values: %w", err)
	}
	if err := esync.RegisterComponent(SyncIDNetServerClock, netcomponents.NetServerClockData{}, netcomponents.NetServerClock); err != nil {
		return fmt.Errorf("register server clock: %w", err)
	}
	return nil
}
