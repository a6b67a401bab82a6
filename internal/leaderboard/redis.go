package leaderboard

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/SlpAus/smartpanel-backend/internal/platform/database"
	"github.com/SlpAus/smartpanel-backend/internal/platform/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const AllTimeKey = "leaderboard:all_time"

// Members are ranked by a single float: the score in the high part and the
// inverted panelist id in the low 20 bits, so a descending range gives
// score desc, id asc. Ids must stay below idSpace.
const idSpace = 1 << 20

func encode(score int, panelistID uint) float64 {
	return float64(score)*idSpace + float64(idSpace-1-int64(panelistID))
}

func decodeScore(v float64) int {
	return int(math.Floor(v / idSpace))
}

// Cache mirrors panelist scores in a Redis sorted set.
type Cache struct {
	rdb     redis.Cmdable
	log     *logger.Logger
	healthy func() bool
}

func NewCache(rdb redis.Cmdable, log *logger.Logger) *Cache {
	return &Cache{rdb: rdb, log: log, healthy: database.IsRedisHealthy}
}

// Available is false when there is no client or Redis is marked unhealthy.
func (c *Cache) Available() bool {
	return c != nil && c.rdb != nil && c.healthy()
}

// ScoreChanged records a committed score. GT keeps a late, older write
// from lowering a member.
func (c *Cache) ScoreChanged(ctx context.Context, panelistID uint, score int) error {
	if !c.Available() {
		return nil
	}
	if panelistID >= idSpace {
		return fmt.Errorf("panelist id %d does not fit the leaderboard encoding", panelistID)
	}
	return c.rdb.ZAddGT(ctx, AllTimeKey, redis.Z{
		Score:  encode(score, panelistID),
		Member: strconv.FormatUint(uint64(panelistID), 10),
	}).Err()
}

// Remove drops a deleted panelist.
func (c *Cache) Remove(ctx context.Context, panelistID uint) error {
	if !c.Available() {
		return nil
	}
	return c.rdb.ZRem(ctx, AllTimeKey, strconv.FormatUint(uint64(panelistID), 10)).Err()
}

type cachedScore struct {
	PanelistID uint
	Score      int
}

// Top returns up to n members, best first.
func (c *Cache) Top(ctx context.Context, n int) ([]cachedScore, error) {
	zs, err := c.rdb.ZRevRangeWithScores(ctx, AllTimeKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", AllTimeKey, err)
	}
	out := make([]cachedScore, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad member %q in %s: %w", member, AllTimeKey, err)
		}
		out = append(out, cachedScore{PanelistID: uint(id), Score: decodeScore(z.Score)})
	}
	return out, nil
}

// Warmup replaces the sorted set with the scores stored in SQL, then
// reads SQL again and re-adds every score with GT. An award that commits
// between the first read and the swap has its ZAddGT overwritten by the
// swap, and the second read restores it. Scores only grow, so GT never
// undoes a newer value.
func (c *Cache) Warmup(ctx context.Context, db *gorm.DB) (int, error) {
	members, err := c.loadMembers(ctx, db)
	if err != nil {
		return 0, err
	}
	if err := c.replace(ctx, members); err != nil {
		return 0, err
	}
	if err := c.replay(ctx, db); err != nil {
		return 0, err
	}
	return len(members), nil
}

func (c *Cache) loadMembers(ctx context.Context, db *gorm.DB) ([]redis.Z, error) {
	var rows []cachedScore
	err := db.WithContext(ctx).Table("panelists").Select("id AS panelist_id", "score").Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load panelist scores: %w", err)
	}

	members := make([]redis.Z, 0, len(rows))
	for _, r := range rows {
		if r.PanelistID >= idSpace {
			c.log.Warn("panelist id too large for the leaderboard cache", "panelist_id", r.PanelistID)
			continue
		}
		members = append(members, redis.Z{
			Score:  encode(r.Score, r.PanelistID),
			Member: strconv.FormatUint(uint64(r.PanelistID), 10),
		})
	}
	return members, nil
}

// replace swaps the whole set in one MULTI so readers never see it empty.
func (c *Cache) replace(ctx context.Context, members []redis.Z) error {
	pipe := c.rdb.TxPipeline()
	pipe.Del(ctx, AllTimeKey)
	if len(members) > 0 {
		pipe.ZAdd(ctx, AllTimeKey, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rebuild %s: %w", AllTimeKey, err)
	}
	return nil
}

func (c *Cache) replay(ctx context.Context, db *gorm.DB) error {
	members, err := c.loadMembers(ctx, db)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}
	if err := c.rdb.ZAddGT(ctx, AllTimeKey, members...).Err(); err != nil {
		return fmt.Errorf("replay %s: %w", AllTimeKey, err)
	}
	return nil
}
