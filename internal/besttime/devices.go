package besttime

import (
	"sync"

	redis "github.com/redis/go-redis/v9"
)

// Devices hands out the KV of a device id. With a Redis client the values
// survive restarts; without one they live in process memory.
type Devices struct {
	redis *redis.Client

	mu  sync.Mutex
	mem map[string]*MemoryKV
}

func NewDevices(client *redis.Client) *Devices {
	return &Devices{redis: client, mem: make(map[string]*MemoryKV)}
}

func (d *Devices) KV(deviceID string) KV {
	if d.redis != nil {
		return NewRedisKV(d.redis, deviceID)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	kv, ok := d.mem[deviceID]
	if !ok {
		kv = NewMemoryKV()
		d.mem[deviceID] = kv
	}
	return kv
}
