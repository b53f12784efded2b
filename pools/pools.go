package pools

import (
	"bytes"
	"strings"
	"sync"
)

// Buffers above this size are dropped instead of pooled
const maxPooledBufferSize = 1 << 20

// GlobalPools provides centralized pooling for response and text rendering
type GlobalPools struct {
	Buffers  sync.Pool
	Builders sync.Pool
	RuneRows sync.Pool
}

// Pools is the global instance of memory pools
var Pools = &GlobalPools{
	Buffers: sync.Pool{
		New: func() interface{} {
			buf := &bytes.Buffer{}
			buf.Grow(16 * 1024) // chart options and the dashboard page
			return buf
		},
	},
	Builders: sync.Pool{
		New: func() interface{} {
			builder := &strings.Builder{}
			builder.Grow(1024)
			return builder
		},
	},
	RuneRows: sync.Pool{
		New: func() interface{} {
			row := make([]rune, 0, 128)
			return &row
		},
	},
}

// GetBuffer gets a buffer from the pool and resets it
func (gp *GlobalPools) GetBuffer() *bytes.Buffer {
	buf := gp.Buffers.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// ReturnBuffer returns a buffer to the pool
func (gp *GlobalPools) ReturnBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBufferSize {
		return
	}
	gp.Buffers.Put(buf)
}

// GetBuilder gets a string builder from the pool and resets it
func (gp *GlobalPools) GetBuilder() *strings.Builder {
	builder := gp.Builders.Get().(*strings.Builder)
	builder.Reset()
	return builder
}

// ReturnBuilder returns a string builder to the pool
func (gp *GlobalPools) ReturnBuilder(builder *strings.Builder) {
	gp.Builders.Put(builder)
}

// GetRuneRow returns a row of width spaces
func (gp *GlobalPools) GetRuneRow(width int) []rune {
	rowPtr := gp.RuneRows.Get().(*[]rune)
	row := (*rowPtr)[:0]
	for i := 0; i < width; i++ {
		row = append(row, ' ')
	}
	return row
}

// ReturnRuneRow returns a row to the pool
func (gp *GlobalPools) ReturnRuneRow(row []rune) {
	if cap(row) < 4096 {
		empty := row[:0]
		gp.RuneRows.Put(&empty)
	}
}

// Reset clears all pools (useful for testing)
func (gp *GlobalPools) Reset() {
	gp.Buffers = sync.Pool{New: gp.Buffers.New}
	gp.Builders = sync.Pool{New: gp.Builders.New}
	gp.RuneRows = sync.Pool{New: gp.RuneRows.New}
}
