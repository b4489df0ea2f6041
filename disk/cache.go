package disk

import (
	"errors"
	"io"

	akitacache "github.com/sarchlab/akita/v4/mem/cache"
)

var errNoVictim = errors.New("sector cache has no victim block")

// CacheConfig holds sector cache parameters.
type CacheConfig struct {
	// Size in bytes
	Size int
	// Associativity (number of ways)
	Associativity int
	// BlockSize in bytes, a multiple of SectorSize
	BlockSize int
}

// DefaultCacheConfig returns a 64 KiB, 4-way cache of 4 KiB blocks.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Size:          64 * 1024,
		Associativity: 4,
		BlockSize:     8 * SectorSize,
	}
}

// CacheStats holds sector cache statistics.
type CacheStats struct {
	Reads      uint64
	Writes     uint64
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Writebacks uint64
}

// SectorCache is a write-back, set-associative cache of image blocks. It
// keeps tags and LRU state in an Akita cache directory.
type SectorCache struct {
	config CacheConfig

	directory *akitacache.DirectoryImpl

	// Block data, indexed by setID*associativity + wayID.
	dataStore [][]byte

	stats   CacheStats
	backing Image
}

// NewSectorCache creates a cache in front of backing.
func NewSectorCache(config CacheConfig, backing Image) *SectorCache {
	numSets := config.Size / (config.Associativity * config.BlockSize)
	if numSets < 1 {
		numSets = 1
	}
	totalBlocks := numSets * config.Associativity

	dataStore := make([][]byte, totalBlocks)
	for i := range dataStore {
		dataStore[i] = make([]byte, config.BlockSize)
	}

	return &SectorCache{
		config: config,
		directory: akitacache.NewDirectory(
			numSets,
			config.Associativity,
			config.BlockSize,
			akitacache.NewLRUVictimFinder(),
		),
		dataStore: dataStore,
		backing:   backing,
	}
}

// Stats returns cache statistics.
func (c *SectorCache) Stats() CacheStats {
	return c.stats
}

// Size implements Image.
func (c *SectorCache) Size() int64 {
	return c.backing.Size()
}

func (c *SectorCache) blockIndex(block *akitacache.Block) int {
	return block.SetID*c.config.Associativity + block.WayID
}

// block returns the cached data of the block holding off, filling it from
// the image on a miss.
func (c *SectorCache) block(off int64) ([]byte, *akitacache.Block, error) {
	blockAddr := uint64(off) / uint64(c.config.BlockSize) * uint64(c.config.BlockSize)

	block := c.directory.Lookup(0, blockAddr)
	if block != nil && block.IsValid {
		c.stats.Hits++
		c.directory.Visit(block)
		return c.dataStore[c.blockIndex(block)], block, nil
	}

	c.stats.Misses++
	victim := c.directory.FindVictim(blockAddr)
	if victim == nil {
		return nil, nil, errNoVictim
	}
	data := c.dataStore[c.blockIndex(victim)]

	if victim.IsValid {
		c.stats.Evictions++
		if victim.IsDirty {
			if err := c.writeBack(victim.Tag, data); err != nil {
				return nil, nil, err
			}
		}
	}

	n, err := c.backing.ReadAt(data, int64(blockAddr))
	if err != nil && !errors.Is(err, io.EOF) {
		victim.IsValid = false
		return nil, nil, err
	}
	clear(data[n:])

	victim.Tag = blockAddr
	victim.IsValid = true
	victim.IsDirty = false
	c.directory.Visit(victim)

	return data, victim, nil
}

// writeBack stores a block, trimmed to the image size.
func (c *SectorCache) writeBack(addr uint64, data []byte) error {
	c.stats.Writebacks++
	size := c.backing.Size()
	if int64(addr) >= size {
		return nil
	}
	if rest := size - int64(addr); rest < int64(len(data)) {
		data = data[:rest]
	}
	_, err := c.backing.WriteAt(data, int64(addr))
	return err
}

// ReadAt implements io.ReaderAt through the cache.
func (c *SectorCache) ReadAt(p []byte, off int64) (int, error) {
	c.stats.Reads++
	size := c.backing.Size()
	n := 0
	for n < len(p) {
		pos := off + int64(n)
		if pos >= size {
			return n, io.EOF
		}
		data, _, err := c.block(pos)
		if err != nil {
			return n, err
		}
		inBlock := int(pos % int64(c.config.BlockSize))
		chunk := copy(p[n:], data[inBlock:])
		if rest := size - pos; int64(chunk) > rest {
			chunk = int(rest)
		}
		n += chunk
	}
	return n, nil
}

// WriteAt implements io.WriterAt through the cache. Dirty blocks reach the
// image on eviction or Flush.
func (c *SectorCache) WriteAt(p []byte, off int64) (int, error) {
	c.stats.Writes++
	size := c.backing.Size()
	n := 0
	for n < len(p) {
		pos := off + int64(n)
		if pos >= size {
			return n, ErrOutOfRange
		}
		data, block, err := c.block(pos)
		if err != nil {
			return n, err
		}
		inBlock := int(pos % int64(c.config.BlockSize))
		chunk := len(p) - n
		if room := len(data) - inBlock; chunk > room {
			chunk = room
		}
		if rest := size - pos; int64(chunk) > rest {
			chunk = int(rest)
		}
		copy(data[inBlock:], p[n:n+chunk])
		block.IsDirty = true
		n += chunk
	}
	return n, nil
}

// Flush writes back every dirty block. Blocks stay cached.
func (c *SectorCache) Flush() error {
	for _, set := range c.directory.GetSets() {
		for _, block := range set.Blocks {
			if !block.IsValid || !block.IsDirty {
				continue
			}
			if err := c.writeBack(block.Tag, c.dataStore[c.blockIndex(block)]); err != nil {
				return err
			}
			block.IsDirty = false
		}
	}
	return nil
}

// Reset drops every cached block without writing it back.
func (c *SectorCache) Reset() {
	c.directory.Reset()
	c.stats = CacheStats{}
}
