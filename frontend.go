package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tsinghua-fib-lab/agentsociety-tlenv/agent"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/env"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/envserver"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/output"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/utils/config"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/viz"
)

// listenAndServe 启动HTTP服务，ctx结束时优雅退出
func listenAndServe(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Infof("server listening at %v", addr)
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// startViewer 按配置启动可视化websocket服务
// 返回：未配置时返回nil
func startViewer(ctx context.Context, rc *config.RuntimeConfig) *viz.Hub {
	addr := rc.All.Server.Viewer
	if addr == "" {
		return nil
	}
	hub := viz.NewHub(16)
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	go func() {
		if err := listenAndServe(ctx, addr, mux); err != nil {
			log.Errorf("viewer server exited: %v", err)
		}
		hub.Close()
	}()
	return hub
}

// serve 为进程外的智能体提供环境RPC服务
func serve(ctx context.Context, rc *config.RuntimeConfig, recorder output.EpisodeRecorder) error {
	hub := startViewer(ctx, rc)
	s := envserver.NewServer(env.New(rc), rc.All.Env.Preset, recorder, hub)
	mux := http.NewServeMux()
	mux.Handle(s.Handler())
	return listenAndServe(ctx, rc.All.Server.Listen, mux)
}

// demo 可视化演示
// 功能：按固定帧率推进仿真并推送快照，前端发来的切换请求作为下一步的动作，episode结束后自动开始下一个
// 说明：帧率只决定调用节奏，仿真时间仍按固定步长推进
func demo(ctx context.Context, rc *config.RuntimeConfig, recorder output.EpisodeRecorder) error {
	period, err := demoPeriod(*demoFPS, rc.Interval)
	if err != nil {
		return err
	}
	if rc.All.Server.Viewer == "" {
		rc.All.Server.Viewer = ":51103"
	}
	hub := startViewer(ctx, rc)
	e := env.New(rc)
	e.Reset(nil)

	log.Infof("demo steps every %v, simulated %v per step", period, rc.Interval)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		action := env.ActionKeep
		if hub.TakeSwitchRequest() {
			action = env.ActionSwitch
		}
		_, _, terminated, _, _, err := e.Step(action)
		if err != nil {
			return err
		}
		hub.Publish(viz.MessageSnapshot, e.Snapshot())
		if terminated {
			finishEpisode(ctx, modeDemo, rc, e, recorder)
			e.Reset(nil)
		}
	}
}

// demoPeriod 演示模式两次调用step之间的真实时间间隔
// 说明：fps为0时与每步仿真时间一致，画面中的时间与真实时间同速
func demoPeriod(fps float64, interval time.Duration) (time.Duration, error) {
	switch {
	case fps < 0:
		return 0, fmt.Errorf("demo.fps must not be negative, got %v", fps)
	case fps == 0:
		return interval, nil
	}
	return time.Duration(float64(time.Second) / fps), nil
}

// run 无界面运行基线决策器
func run(ctx context.Context, rc *config.RuntimeConfig, recorder output.EpisodeRecorder) error {
	e := env.New(rc)
	a, err := agent.New(*agentName, e.ActionSpace, rc.Seed+1)
	if err != nil {
		return err
	}
	for i := 0; i < *episodes; i++ {
		seed := rc.Seed + uint64(i)
		obs, _ := e.Reset(&seed)
		a.Reset()
		for !e.Done() {
			if ctx.Err() != nil {
				return nil
			}
			obs, _, _, _, _, err = e.Step(a.Act(obs))
			if err != nil {
				return err
			}
		}
		finishEpisode(ctx, modeRun, rc, e, recorder)
	}
	return nil
}

func finishEpisode(ctx context.Context, m string, rc *config.RuntimeConfig, e *env.Env, recorder output.EpisodeRecorder) {
	stats := e.Stats()
	log.Infof(
		"episode done: seed=%d steps=%d reward=%.2f switches=%d long_wait_steps=%d exited=%d",
		stats.Seed, stats.Steps, stats.TotalReward, stats.SwitchCount, stats.LongWaitSteps, stats.Exited,
	)
	if err := recorder.Record(ctx, output.NewSummary(m, rc.All.Env.Preset, stats)); err != nil {
		log.Warnf("record episode failed: %v", err)
	}
}
