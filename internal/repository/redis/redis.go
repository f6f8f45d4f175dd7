package redis

import (
	"context"
	"fmt"
	"time"

	"ragtime/internal/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Conn 客户端以及可能存在的内嵌服务
type Conn struct {
	Client   *redis.Client
	embedded *miniredis.Miniredis
}

// Open addr 为空时启动内嵌 redis，否则连接外部实例并做一次 Ping 健康检查。
func Open(addr, password string, db int) (*Conn, error) {
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("failed to start embedded redis: %w", err)
		}
		logger.Info("embedded redis started on ", mr.Addr())
		return &Conn{
			Client:   redis.NewClient(&redis.Options{Addr: mr.Addr()}),
			embedded: mr,
		}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	logger.Info("connected to redis at ", addr)
	return &Conn{Client: client}, nil
}

// Close 关闭 Redis 客户端（在程序退出时调用）。
func (c *Conn) Close() error {
	if c == nil || c.Client == nil {
		return nil
	}
	err := c.Client.Close()
	if c.embedded != nil {
		c.embedded.Close()
	}
	return err
}
