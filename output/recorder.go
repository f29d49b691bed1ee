// Package output 负责将episode统计写出到外部存储
package output

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/task"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/utils/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrBadMongoConfig = errors.New("output: mongo db and col must be set")
)

// EpisodeSummary 一个episode的统计记录
type EpisodeSummary struct {
	ID              string    `bson:"_id"`
	Mode            string    `bson:"mode"`   // serve|demo|run
	Preset          string    `bson:"preset"` // rl|demo
	Seed            int64     `bson:"seed"`   // 按位转换的uint64种子
	Steps           int32     `bson:"steps"`
	TotalReward     float64   `bson:"total_reward"`
	SwitchCount     int32     `bson:"switch_count"`
	LongWaitSteps   int32     `bson:"long_wait_steps"`
	OverSwitchSteps int32     `bson:"over_switch_steps"`
	Spawned         int       `bson:"spawned"`
	Exited          int       `bson:"exited"`
	CreatedAt       time.Time `bson:"created_at"`
}

// NewSummary 根据episode统计生成记录
// 参数：mode-运行方式，preset-环境预设，stats-episode统计
func NewSummary(mode, preset string, stats task.EpisodeStats) EpisodeSummary {
	return EpisodeSummary{
		ID:              uuid.NewString(),
		Mode:            mode,
		Preset:          preset,
		Seed:            int64(stats.Seed),
		Steps:           stats.Steps,
		TotalReward:     stats.TotalReward,
		SwitchCount:     stats.SwitchCount,
		LongWaitSteps:   stats.LongWaitSteps,
		OverSwitchSteps: stats.OverSwitchSteps,
		Spawned:         stats.Spawned,
		Exited:          stats.Exited,
		CreatedAt:       time.Now().UTC().Truncate(time.Millisecond),
	}
}

// EpisodeRecorder episode记录器
// 说明：只在episode结束后由前端调用，不在仿真步内调用
type EpisodeRecorder interface {
	Record(ctx context.Context, s EpisodeSummary) error
	Close(ctx context.Context) error
}

// New 根据输出配置创建记录器
// 说明：未配置MongoDB时返回不做任何事的记录器
func New(ctx context.Context, c config.Output) (EpisodeRecorder, error) {
	if c.Mongo.URI == "" {
		return nopRecorder{}, nil
	}
	return NewMongoRecorder(ctx, c.Mongo)
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, EpisodeSummary) error { return nil }
func (nopRecorder) Close(context.Context) error                  { return nil }

// MongoRecorder 将每个episode的统计作为一个文档写入MongoDB
type MongoRecorder struct {
	client *mongo.Client
	col    *mongo.Collection
}

// NewMongoRecorder 连接MongoDB
// 参数：ctx-上下文，c-MongoDB配置
// 返回：记录器，连接字符串非法或库名、集合名为空时返回错误
func NewMongoRecorder(ctx context.Context, c config.Mongo) (*MongoRecorder, error) {
	if c.DB == "" || c.Col == "" {
		return nil, ErrBadMongoConfig
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.URI))
	if err != nil {
		return nil, fmt.Errorf("output: connect mongo: %w", err)
	}
	log.Infof("record episodes to mongo %s.%s", c.DB, c.Col)
	return &MongoRecorder{
		client: client,
		col:    client.Database(c.DB).Collection(c.Col),
	}, nil
}

// Record 写入一条episode记录
func (r *MongoRecorder) Record(ctx context.Context, s EpisodeSummary) error {
	if _, err := r.col.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("output: insert episode %s: %w", s.ID, err)
	}
	log.Debugf("episode %s recorded", s.ID)
	return nil
}

// Close 断开连接
func (r *MongoRecorder) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
