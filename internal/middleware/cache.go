package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/inkwell-journal/internal/config"
	"github.com/iliyamo/inkwell-journal/internal/model"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 {
		cw.buf.Write(b)
	} else if remain := cw.limit - cw.size; remain > 0 {
		if int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else {
			cw.buf.Write(b[:remain])
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// OwnerCachePrefix is the key prefix under which every cached response for
// userID lives.  Deleting prefix:u<id>:* drops that user's whole cache.
func OwnerCachePrefix(prefix string, userID uint64) string {
	return fmt.Sprintf("%s:u%d:", prefix, userID)
}

// cacheKeyFrom hashes route, local day and query under the owner's prefix.
// Streaks and trend windows are relative to today, so a new day never
// reads yesterday's keys.
func cacheKeyFrom(prefix string, userID uint64, day string, c echo.Context) string {
	r := c.Request()
	sum := sha1.Sum([]byte("route:" + c.Path() + ":day:" + day + ":q:" + r.URL.Query().Encode()))
	return fmt.Sprintf("%s%x", OwnerCachePrefix(prefix, userID), sum[:])
}

// cacheTTL caps ttl at the next midnight in loc.
func cacheTTL(now time.Time, loc *time.Location, ttl time.Duration) time.Duration {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	y, m, d := local.Date()
	midnight := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	if left := midnight.Sub(now); left < ttl {
		return left
	}
	return ttl
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	hdr := make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, hdr, bs[8+hlen:], true
}

// NewAnalyticsCache caches successful GET responses per authenticated user.
// It must run after JWTAuth.  Entry mutations clear a user's keys through
// OwnerCachePrefix, so a hit never outlives the data it was computed from.
// Keys are scoped to the current day in loc and expire by its midnight.
func NewAnalyticsCache(cfg config.CacheConfig, rdb *redis.Client, loc *time.Location) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	maxBody := int64(cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid, ok := UserID(c)
			if !ok || c.Request().Method != http.MethodGet {
				return next(c)
			}

			ctx := c.Request().Context()
			now := time.Now()
			key := cacheKeyFrom(cfg.Prefix, uid, model.DayOf(now, loc).Format(model.DayLayout), c)

			if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, echo.HeaderContentLength) {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					if len(body) > 0 {
						_, _ = c.Response().Write(body)
					}
					return nil
				}
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			// Truncated bodies are never stored.
			if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
				return nil
			}
			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			if payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes()); err == nil {
				_ = rdb.SetEx(context.WithoutCancel(ctx), key, payload, cacheTTL(now, loc, cfg.TTL)).Err()
			}
			return nil
		}
	}
}
