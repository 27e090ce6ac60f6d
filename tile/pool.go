package tile

import "sync"

// Pool provides reuse of Tile instances via sync.Pool.
//
// Tiles are bucketed by effective size and bytes per pixel. Full-size
// tiles of the common depths are by far the most frequent and each gets
// its own pool; edge tiles go through a sync.Map of lazily created pools.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	// pools holds sync.Pool instances for edge tile sizes.
	// Key format: (ewidth << 20) | (eheight << 8) | bpp
	pools sync.Map

	// full holds the dedicated pools for 64x64 tiles, indexed by bpp.
	full [maxBPP + 1]sync.Pool
}

// maxBPP is the largest supported pixel depth.
const maxBPP = 4

// NewPool creates a new tile pool.
func NewPool() *Pool {
	p := &Pool{}
	for bpp := 1; bpp <= maxBPP; bpp++ {
		p.full[bpp].New = func() any {
			return &Tile{
				EWidth:  TileWidth,
				EHeight: TileHeight,
				BPP:     bpp,
				Data:    make([]byte, TileWidth*TileHeight*bpp),
			}
		}
	}
	return p
}

// Get retrieves a zeroed tile of the given size from the pool.
// Returns nil for invalid dimensions.
func (p *Pool) Get(ewidth, eheight, bpp int) *Tile {
	if ewidth <= 0 || eheight <= 0 || bpp <= 0 || bpp > maxBPP {
		return nil
	}

	if ewidth == TileWidth && eheight == TileHeight {
		t := p.full[bpp].Get().(*Tile)
		t.Reset()
		return t
	}

	pool := p.getOrCreatePool(ewidth, eheight, bpp)
	t := pool.Get().(*Tile)
	t.Reset()
	return t
}

// Put returns a tile to the pool for reuse. Tiles that are still shared
// or locked are not pooled. If t is nil, this is a no-op.
func (p *Pool) Put(t *Tile) {
	if t == nil || t.shares > 0 || t.locks > 0 {
		return
	}
	if t.BPP <= 0 || t.BPP > maxBPP {
		return
	}

	if t.EWidth == TileWidth && t.EHeight == TileHeight {
		p.full[t.BPP].Put(t)
		return
	}

	if pool, ok := p.pools.Load(poolKey(t.EWidth, t.EHeight, t.BPP)); ok {
		pool.(*sync.Pool).Put(t)
	}
}

// poolKey creates a unique key for an edge tile size.
func poolKey(ewidth, eheight, bpp int) uint32 {
	return uint32(ewidth)<<20 | uint32(eheight)<<8 | uint32(bpp) //nolint:gosec // ewidth, eheight <= 64, bpp <= 4
}

// getOrCreatePool gets or creates a sync.Pool for the given tile size.
func (p *Pool) getOrCreatePool(ewidth, eheight, bpp int) *sync.Pool {
	key := poolKey(ewidth, eheight, bpp)
	if pool, ok := p.pools.Load(key); ok {
		return pool.(*sync.Pool)
	}

	newPool := &sync.Pool{
		New: func() any {
			return &Tile{
				EWidth:  ewidth,
				EHeight: eheight,
				BPP:     bpp,
				Data:    make([]byte, ewidth*eheight*bpp),
			}
		},
	}

	actual, _ := p.pools.LoadOrStore(key, newPool)
	return actual.(*sync.Pool)
}

// defaultPool is the package-level tile pool used by NewManager.
var defaultPool = NewPool()
