package domain

import (
	"context"
	"sync"
)

// Connection は物理的な接続を表します。書き込みは直列化されます。
type Connection struct {
	transport Transport
	writeMu   sync.Mutex
}

func NewConnection(transport Transport) *Connection {
	return &Connection{transport: transport}
}

func (c *Connection) Write(ctx context.Context, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.transport.Write(ctx, data)
}

func (c *Connection) Read(ctx context.Context) ([]byte, error) {
	return c.transport.Read(ctx)
}

func (c *Connection) Close() {
	_ = c.transport.Close(1000, "")
}
