// Package envserver 通过connect RPC向进程外的智能体提供reset/step接口
package envserver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"

	"connectrpc.com/connect"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/env"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/output"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/viz"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "intersection.v1.EnvService"

	ResetProcedure    = "/" + ServiceName + "/Reset"
	StepProcedure     = "/" + ServiceName + "/Step"
	SnapshotProcedure = "/" + ServiceName + "/Snapshot"
	SpacesProcedure   = "/" + ServiceName + "/Spaces"
)

var (
	ErrMissingAction = errors.New("envserver: field `action` is required")
	ErrBadSeed       = errors.New("envserver: field `seed` must be a non-negative integer")
)

// Server 环境RPC服务
// 功能：串行化所有请求后转发给同一个Env，episode结束后写出统计并向可视化前端推送快照
type Server struct {
	mu  sync.Mutex
	env *env.Env

	preset   string
	recorder output.EpisodeRecorder
	hub      *viz.Hub // 可为nil
	recorded bool     // 当前episode是否已写出统计
}

// NewServer 创建服务
// 参数：e-环境，preset-环境预设名（写入统计），recorder-episode记录器，hub-可视化Hub（可为nil）
func NewServer(e *env.Env, preset string, recorder output.EpisodeRecorder, hub *viz.Hub) *Server {
	return &Server{
		env:      e,
		preset:   preset,
		recorder: recorder,
		hub:      hub,
	}
}

// Handler 构造HTTP处理器
// 返回：服务路径前缀与处理器
func (s *Server) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(ResetProcedure, connect.NewUnaryHandler(ResetProcedure, s.Reset, opts...))
	mux.Handle(StepProcedure, connect.NewUnaryHandler(StepProcedure, s.Step, opts...))
	mux.Handle(SnapshotProcedure, connect.NewUnaryHandler(SnapshotProcedure, s.Snapshot, opts...))
	mux.Handle(SpacesProcedure, connect.NewUnaryHandler(SpacesProcedure, s.Spaces, opts...))
	return "/" + ServiceName + "/", mux
}

// Reset RPC接口：开始新的episode
// 请求：{"seed": 可选，不超过2^53的非负整数，或十进制字符串表示的任意uint64}
// 返回：{"observation": [...], "info": {}}
func (s *Server) Reset(
	ctx context.Context, in *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	var seed *uint64
	if v, ok := in.Msg.GetFields()["seed"]; ok {
		u, err := toSeed(v)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %v", ErrBadSeed, err))
		}
		seed = &u
	}

	s.mu.Lock()
	obs, info := s.env.Reset(seed)
	s.recorded = false
	s.mu.Unlock()

	s.publish()
	return newResponse(map[string]any{
		"observation": observationValue(obs),
		"info":        map[string]any(info),
	})
}

// Step RPC接口：执行一个动作
// 请求：{"action": 0|1}
// 返回：{"observation", "reward", "terminated", "truncated", "info"}
func (s *Server) Step(
	ctx context.Context, in *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	v, ok := in.Msg.GetFields()["action"]
	if !ok {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrMissingAction)
	}
	action, err := toInt(v)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %v", env.ErrInvalidAction, err))
	}

	s.mu.Lock()
	obs, reward, terminated, truncated, info, err := s.env.Step(action)
	var summary *output.EpisodeSummary
	if err == nil && terminated && !s.recorded {
		s.recorded = true
		sum := output.NewSummary("serve", s.preset, s.env.Stats())
		summary = &sum
	}
	s.mu.Unlock()
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if summary != nil {
		if err := s.recorder.Record(ctx, *summary); err != nil {
			log.Warnf("record episode failed: %v", err)
		}
	}
	s.publish()
	return newResponse(map[string]any{
		"observation": observationValue(obs),
		"reward":      reward,
		"terminated":  terminated,
		"truncated":   truncated,
		"info":        map[string]any(info),
	})
}

// Snapshot RPC接口：获取渲染用只读快照
func (s *Server) Snapshot(
	ctx context.Context, in *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	s.mu.Lock()
	snap := s.env.Snapshot()
	s.mu.Unlock()
	out, err := toStruct(snap)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(out), nil
}

// Spaces RPC接口：获取动作空间与观测空间
func (s *Server) Spaces(
	ctx context.Context, in *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	out, err := toStruct(map[string]any{
		"action_space":      s.env.ActionSpace,
		"observation_space": s.env.ObservationSpace,
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(out), nil
}

func (s *Server) publish() {
	if s.hub == nil || s.hub.Viewers() == 0 {
		return
	}
	s.mu.Lock()
	snap := s.env.Snapshot()
	s.mu.Unlock()
	s.hub.Publish(viz.MessageSnapshot, snap)
}

// toInt 将JSON数值转换为整数，拒绝非数值与非整数
func toInt(v *structpb.Value) (int, error) {
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("not a number: %v", v)
	}
	f := n.NumberValue
	if f != math.Trunc(f) || math.IsInf(f, 0) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("not an integer: %v", f)
	}
	return int(f), nil
}

// maxExactSeed JSON数值能精确表示的最大整数
const maxExactSeed = 1 << 53

// toSeed 解析随机数种子
// 说明：JSON数值超过2^53会丢失精度，更大的种子需以十进制字符串传入
func toSeed(v *structpb.Value) (uint64, error) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f != math.Trunc(f) || f < 0 || f > maxExactSeed {
			return 0, fmt.Errorf("not an integer in [0, 2^53]: %v", f)
		}
		return uint64(f), nil
	case *structpb.Value_StringValue:
		return strconv.ParseUint(k.StringValue, 10, 64)
	}
	return 0, fmt.Errorf("not a number or string: %v", v)
}

func observationValue(obs env.Observation) []any {
	res := make([]any, len(obs))
	for i, v := range obs {
		res[i] = float64(v)
	}
	return res
}

func newResponse(m map[string]any) (*connect.Response[structpb.Struct], error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(out), nil
}
