// Command chainwalkd runs a long-lived scan in the background and serves
// its progress over HTTP: health, current tip, block lookup, and UTXO
// lookup when spending tracking is enabled.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"chainwalk"
	"chainwalk/internal/chain"
	"chainwalk/internal/logging"
	"chainwalk/internal/scan"
	"chainwalk/internal/tail"
	"chainwalk/internal/utxo"
)

// defaultPollInterval is how often the background scan re-checks the data
// directory for newly-written blocks once it has caught up to the tip,
// overridable with CHAINWALK_POLL_INTERVAL (a time.ParseDuration string).
const defaultPollInterval = 5 * time.Second

var log = logging.For("chainwalkd")

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	dataDir := os.Getenv("CHAINWALK_DATADIR")
	if dataDir == "" {
		dataDir = "."
	}
	if lvl := os.Getenv("CHAINWALK_LOG_LEVEL"); lvl != "" {
		if l, err := zerolog.ParseLevel(lvl); err == nil {
			logging.SetLevel(l)
		}
	}

	trackSpending := os.Getenv("CHAINWALK_TRACK_SPENDING") == "1"

	pollInterval := defaultPollInterval
	if v := os.Getenv("CHAINWALK_POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			pollInterval = d
		}
	}

	srv := newServer(dataDir, trackSpending, pollInterval)
	go srv.run()

	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	r.GET("/api/health", srv.handleHealth)
	r.GET("/api/tip", srv.handleTip)
	r.GET("/api/block/height/:height", srv.handleBlockByHeight)
	r.GET("/api/block/hash/:hash", srv.handleBlockByHash)
	r.GET("/api/utxo/:txid/:vout", srv.handleUTXO)

	fmt.Printf("http://127.0.0.1:%s\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// server holds the BlockChain a background scan builds incrementally, and
// (if spending tracking is on) the UTXO index it populates alongside it.
// The scan keeps polling for new blocks and only stops on an error, so
// every handler reads through a mutex rather than assuming the chain is
// complete.
type server struct {
	dataDir       string
	trackSpending bool
	pollInterval  time.Duration

	mu      sync.RWMutex
	bc      *chain.BlockChain
	scanErr error
	index   *utxo.Index
}

func newServer(dataDir string, trackSpending bool, pollInterval time.Duration) *server {
	return &server{
		dataDir:       dataDir,
		trackSpending: trackSpending,
		pollInterval:  pollInterval,
		bc:            chain.NewBlockChain(),
	}
}

// run scans forever: once a stream runs out of blocks it doesn't stop, it
// polls the data directory at s.pollInterval until the next block shows up.
// The only way out is a real parse error, or Stop being called on the
// Tailable (which nothing here currently does, since the server runs for
// the lifetime of the process).
func (s *server) run() {
	cfg := chainwalk.Config{
		DataDir: s.dataDir,
		Refresh: true,
	}
	if s.trackSpending {
		idx := utxo.NewIndex(utxo.Config{})
		s.mu.Lock()
		s.index = idx
		s.mu.Unlock()

		tracker := utxo.NewTracker(idx)
		blocks := chainwalk.Blocks(cfg)
		txs := scan.NewTrackedTxStream(blocks, tracker, scan.IncludeBlockContext())
		tailed := tail.New[*chain.TxInBlock](txs, tail.WithPollInterval(s.pollInterval))

		for {
			tx, err := tailed.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				s.mu.Lock()
				s.scanErr = err
				s.mu.Unlock()
				log.Error().Err(err).Msg("scan stopped")
				return
			}
			if tx.Block == nil {
				continue
			}
			s.recordBlockSeen(tx.Block)
		}
	}

	builder := chainwalk.Chain(cfg)
	tailed := tail.New[*chain.Block](builder, tail.WithPollInterval(s.pollInterval))
	for {
		_, err := tailed.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			s.mu.Lock()
			s.scanErr = err
			s.mu.Unlock()
			log.Error().Err(err).Msg("scan stopped")
			return
		}
		s.mu.Lock()
		s.bc = builder.Chain()
		s.mu.Unlock()
	}
}

// recordBlockSeen appends b to the chain if it's the next expected height,
// used by the spending-tracked path where blocks are observed once per
// transaction rather than once per ChainBuilder.Next call.
func (s *server) recordBlockSeen(b *chain.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bc.Contains(b.BlockHash()) {
		return
	}
	info, err := chain.BlockInfoFromBlock(b)
	if err != nil {
		return
	}
	if err := s.bc.Append(info); err != nil {
		return // out of order w.r.t. this chain view; tip will catch up
	}
}

func (s *server) handleHealth(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c.JSON(200, gin.H{"ok": s.scanErr == nil, "error": errString(s.scanErr)})
}

func (s *server) handleTip(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	last, ok := s.bc.Last()
	if !ok {
		c.JSON(200, gin.H{"height": -1})
		return
	}
	c.JSON(200, gin.H{
		"height":    last.Height,
		"blockHash": last.BlockHash.String(),
		"numTxs":    last.NumTxs,
		"timestamp": last.Timestamp,
	})
}

func (s *server) handleBlockByHeight(c *gin.Context) {
	var height int
	if _, err := fmt.Sscanf(c.Param("height"), "%d", &height); err != nil {
		c.JSON(400, gin.H{"error": "invalid height"})
		return
	}
	s.mu.RLock()
	info, ok := s.bc.ByHeight(height)
	s.mu.RUnlock()
	if !ok {
		c.JSON(404, gin.H{"error": "unknown height"})
		return
	}
	c.JSON(200, blockInfoJSON(info))
}

func (s *server) handleBlockByHash(c *gin.Context) {
	hash, err := chainHashFromHex(c.Param("hash"))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid hash"})
		return
	}
	s.mu.RLock()
	info, ok := s.bc.ByHash(hash)
	s.mu.RUnlock()
	if !ok {
		c.JSON(404, gin.H{"error": "unknown hash"})
		return
	}
	c.JSON(200, blockInfoJSON(info))
}

func (s *server) handleUTXO(c *gin.Context) {
	if !s.trackSpending {
		c.JSON(400, gin.H{"error": "spending tracking disabled (set CHAINWALK_TRACK_SPENDING=1)"})
		return
	}
	hash, err := chainHashFromHex(c.Param("txid"))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid txid"})
		return
	}
	var vout uint32
	if _, err := fmt.Sscanf(c.Param("vout"), "%d", &vout); err != nil {
		c.JSON(400, gin.H{"error": "invalid vout"})
		return
	}
	s.mu.RLock()
	idx := s.index
	s.mu.RUnlock()
	if idx == nil {
		c.JSON(400, gin.H{"error": "utxo index not ready"})
		return
	}
	info, err := idx.Lookup(hash, vout)
	if err != nil {
		c.JSON(404, gin.H{"error": "not found or already spent"})
		return
	}
	c.JSON(200, gin.H{
		"value":       info.Value,
		"blockHeight": info.BlockHeight,
	})
}

func blockInfoJSON(info chain.BlockInfo) gin.H {
	return gin.H{
		"height":    info.Height,
		"blockHash": info.BlockHash.String(),
		"numTxs":    info.NumTxs,
		"timestamp": info.Timestamp,
		"rawSize":   info.RawSize,
	}
}

func chainHashFromHex(s string) (chain.Hash, error) {
	h, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return chain.Hash{}, err
	}
	return *h, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
