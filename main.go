package main

import (
	"context"
	"encoding/base64"
	"flag"
	"os"
	"os/signal"
	"syscall"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/output"
	"github.com/tsinghua-fib-lab/agentsociety-tlenv/utils/config"
)

const (
	modeServe = "serve" // 为进程外智能体提供RPC环境
	modeDemo  = "demo"  // 可视化演示
	modeRun   = "run"   // 无界面运行基线决策器
)

var (
	// 运行方式
	mode = flag.String("mode", modeServe, "run mode (serve|demo|run)")
	// 本程序监听的RPC地址，覆盖配置文件中的server.listen
	listen = flag.String("listen", "", "RPC listening address, e.g. :51102")
	// 可视化websocket监听地址，覆盖配置文件中的server.viewer
	viewer = flag.String("viewer", "", "viewer websocket listening address, e.g. :51103")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// run模式
	agentName = flag.String("agent", "random", "baseline agent in run mode (random|max_pressure)")
	episodes  = flag.Int("episodes", 1, "number of episodes in run mode")
	// demo模式
	demoFPS = flag.Float64("demo.fps", 0, "demo steps per second, 0 means real time (one step per control.step.interval)")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "tlenv")
)

// loadConfig 获取配置
// 说明：未指定配置文件时使用运行方式对应的预设（demo模式为demo，其余为rl）
func loadConfig() config.Config {
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	} else {
		if *mode == modeDemo {
			return config.Default(config.PresetDemo)
		}
		return config.Default(config.PresetRL)
	}
	c, err := config.Parse(file)
	if err != nil {
		log.Panicf("config file load err: %v", err)
	}
	if c.Env.Preset == "" && *mode == modeDemo {
		c.Env.Preset = config.PresetDemo
	}
	return c
}

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}

	c := loadConfig()
	if *listen != "" {
		c.Server.Listen = *listen
	}
	if c.Server.Listen == "" {
		c.Server.Listen = ":51102"
	}
	if *viewer != "" {
		c.Server.Viewer = *viewer
	}
	rc, err := config.NewRuntimeConfig(c)
	if err != nil {
		log.Panicf("config err: %v", err)
	}
	log.Infof("%+v", rc.All)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder, err := output.New(ctx, c.Output)
	if err != nil {
		log.Panicf("output init err: %v", err)
	}
	defer recorder.Close(context.Background())

	switch *mode {
	case modeServe:
		err = serve(ctx, rc, recorder)
	case modeDemo:
		err = demo(ctx, rc, recorder)
	case modeRun:
		err = run(ctx, rc, recorder)
	default:
		log.Panicf("mode must be one of serve, demo, run; got %q", *mode)
	}
	if err != nil {
		log.Errorf("%s exited: %v", *mode, err)
		return
	}
	log.Infof("engine complete")
}
