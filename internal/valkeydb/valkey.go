package valkeydb

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/valkey-io/valkey-go"
)

const keyPrefix = "embedding:"

type ValkeyClient struct {
	Client valkey.Client
	ttl    time.Duration
}

func New(ctx context.Context, address string, password string, ttl time.Duration) (*ValkeyClient, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{address},
		Password:    password,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create Valkey client: %w", err)
	}

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to ping Valkey: %w", err)
	}

	return &ValkeyClient{Client: client, ttl: ttl}, nil
}

func (v *ValkeyClient) Close() {
	v.Client.Close()
}

// Get returns the cached vector for key. A miss is (nil, false, nil).
func (v *ValkeyClient) Get(ctx context.Context, key string) ([]float32, bool, error) {
	cmd := v.Client.B().Get().Key(keyPrefix + key).Build()

	raw, err := v.Client.Do(ctx, cmd).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("unable to read cached embedding (%s): %w", key, err)
	}

	vec, err := decodeVector(raw)
	if err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

func (v *ValkeyClient) Set(ctx context.Context, key string, vec []float32) error {
	value := valkey.BinaryString(encodeVector(vec))

	var cmd valkey.Completed
	if v.ttl >= time.Second {
		cmd = v.Client.B().Set().Key(keyPrefix + key).Value(value).ExSeconds(int64(v.ttl / time.Second)).Build()
	} else {
		cmd = v.Client.B().Set().Key(keyPrefix + key).Value(value).Build()
	}

	if err := v.Client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("unable to cache embedding (%s): %w", key, err)
	}
	return nil
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("corrupt cached embedding: %d bytes", len(raw))
	}
	vec := make([]float32, len(raw)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vec, nil
}
