package worker

import (
	"context"
	"time"

	"pawlina-api/internal/domain/notify"
	"pawlina-api/pkg/logger"
	"pawlina-api/pkg/metrics"

	"go.uber.org/zap"
)

// NotifyTask 一次待投递的通知
type NotifyTask struct {
	OrderID uint
	Message notify.Message
	Retry   int // 重试次数
}

// Pool 通知投递工作池
// 订单创建方只管入队，发送失败在池内重试，最终失败只记日志（通知不回滚订单）
type Pool struct {
	TaskQueue   chan NotifyTask
	RetryQueue  chan NotifyTask // 重试队列
	Notifier    notify.Notifier
	WorkerNum   int
	MaxRetry    int           // 最大重试次数
	SendTimeout time.Duration // 单次发送超时
}

func NewPool(notifier notify.Notifier, workerNum int, bufferSize int) *Pool {
	return &Pool{
		TaskQueue:   make(chan NotifyTask, bufferSize),
		RetryQueue:  make(chan NotifyTask, bufferSize/2),
		Notifier:    notifier,
		WorkerNum:   workerNum,
		MaxRetry:    3,
		SendTimeout: 15 * time.Second,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		go p.worker(i)
	}
	// 启动重试处理协程
	go p.retryWorker()
	logger.Log.Info("notification worker pool started", zap.Int("workers", p.WorkerNum))
}

func (p *Pool) worker(id int) {
	for task := range p.TaskQueue {
		if err := p.send(task); err != nil {
			metrics.NotificationsSent.WithLabelValues("failed").Inc()
			logger.Log.Error("notification send failed",
				zap.Int("worker", id),
				zap.Uint("order_id", task.OrderID),
				zap.Int("attempt", task.Retry),
				zap.Error(err),
			)

			// 如果未达到最大重试次数，加入重试队列
			if task.Retry < p.MaxRetry {
				task.Retry++
				select {
				case p.RetryQueue <- task:
				default:
					p.logDroppedTask(task, err)
				}
			} else {
				p.logDroppedTask(task, err)
			}
			continue
		}
		metrics.NotificationsSent.WithLabelValues("sent").Inc()
	}
}

func (p *Pool) retryWorker() {
	for task := range p.RetryQueue {
		// 延迟重试，避免立即重试
		time.Sleep(time.Duration(task.Retry) * time.Second)

		select {
		case p.TaskQueue <- task:
		default:
			p.logDroppedTask(task, nil)
		}
	}
}

func (p *Pool) send(task NotifyTask) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.SendTimeout)
	defer cancel()
	return p.Notifier.Send(ctx, task.Message)
}

func (p *Pool) logDroppedTask(task NotifyTask, err error) {
	metrics.NotificationsSent.WithLabelValues("dropped").Inc()
	logger.Log.Error("notification dropped permanently",
		zap.Uint("order_id", task.OrderID),
		zap.String("subject", task.Message.Subject),
		zap.Error(err),
	)
}

// Enqueue 任务入队，队列满时丢弃并记日志
func (p *Pool) Enqueue(task NotifyTask) {
	select {
	case p.TaskQueue <- task:
	default:
		p.logDroppedTask(task, nil)
	}
}
