package event

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Consumer 拉取事件、分发到 Router，并在处理后确认
// 失败的事件同样确认，不做重试
type Consumer struct {
	source     Source
	router     *Router
	quarantine Quarantine
	backoff    time.Duration
	logger     *zap.Logger
}

// NewConsumer 创建 Consumer
func NewConsumer(source Source, router *Router, quarantine Quarantine, logger *zap.Logger) *Consumer {
	return &Consumer{
		source:     source,
		router:     router,
		quarantine: quarantine,
		backoff:    time.Second,
		logger:     logger,
	}
}

// Run 阻塞运行直到 ctx 取消
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("事件消费已启动")
	for {
		d, err := c.source.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrSourceClosed) {
				c.logger.Info("事件消费已停止")
				return nil
			}
			c.logger.Error("拉取事件失败", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.backoff):
			}
			continue
		}

		c.process(ctx, d)
	}
}

// process 处理单条事件；任何结果都会确认
func (c *Consumer) process(ctx context.Context, d *Delivery) {
	ev, err := Decode(d.Body)
	if err == nil {
		var result Result
		result, err = c.router.Route(ctx, ev)
		if result != ResultMalformed {
			err = nil
		}
	}
	if err != nil {
		if qerr := c.quarantine.Put(ctx, d, err); qerr != nil {
			c.logger.Error("隔离事件失败", zap.String("id", d.ID), zap.Error(qerr))
		} else {
			c.logger.Warn("事件已隔离", zap.String("id", d.ID), zap.Error(err))
		}
	}

	if err := c.source.Ack(ctx, d); err != nil {
		c.logger.Error("确认事件失败", zap.String("id", d.ID), zap.Error(err))
	}
}
