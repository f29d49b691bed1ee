// Package viz 向可视化前端推送仿真快照，并收集前端发来的切换请求
package viz

import (
	"encoding/json"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	MessageSnapshot = "snapshot" // 服务端->前端：仿真快照
	MessageSwitch   = "switch"   // 前端->服务端：请求切换信号灯

	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
)

// Message websocket消息
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type viewer struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub 可视化前端连接集合
// 功能：广播快照、收集切换请求
// 说明：Publish从不阻塞调用方，前端消费过慢时直接丢弃该前端的本帧
type Hub struct {
	upgrader websocket.Upgrader
	buffer   int // 每个前端的发送缓冲帧数

	mu      sync.Mutex
	viewers map[*viewer]struct{}

	switchRequested atomic.Bool
	dropped         atomic.Int64
}

// NewHub 创建Hub
// 参数：buffer-每个前端的发送缓冲帧数
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin,
		},
		buffer:  buffer,
		viewers: make(map[*viewer]struct{}),
	}
}

// ServeHTTP 将HTTP连接升级为websocket并注册为前端
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("failed to upgrade connection: %v", err)
		return
	}
	v := &viewer{conn: conn, send: make(chan []byte, h.buffer)}
	h.mu.Lock()
	h.viewers[v] = struct{}{}
	n := len(h.viewers)
	h.mu.Unlock()
	log.Infof("viewer %v connected (%d online)", conn.RemoteAddr(), n)

	go h.writePump(v)
	go h.readPump(v)
}

// Publish 向所有前端广播一条消息
func (h *Hub) Publish(typ string, data any) {
	b, err := json.Marshal(Message{Type: typ, Data: data})
	if err != nil {
		log.Errorf("marshal %s message: %v", typ, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for v := range h.viewers {
		select {
		case v.send <- b:
		default:
			h.dropped.Add(1)
		}
	}
}

// TakeSwitchRequest 取出并清除前端的切换请求
// 说明：两次调用之间的多个请求合并为一个
func (h *Hub) TakeSwitchRequest() bool {
	return h.switchRequested.Swap(false)
}

// Viewers 在线前端数
func (h *Hub) Viewers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.viewers)
}

// Dropped 因前端消费过慢而丢弃的帧数
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Close 断开所有前端
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for v := range h.viewers {
		h.removeLocked(v)
	}
}

func (h *Hub) remove(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(v)
}

func (h *Hub) removeLocked(v *viewer) {
	if _, ok := h.viewers[v]; !ok {
		return
	}
	delete(h.viewers, v)
	close(v.send)
	v.conn.Close()
	log.Infof("viewer %v disconnected", v.conn.RemoteAddr())
}

func (h *Hub) readPump(v *viewer) {
	defer h.remove(v)
	for {
		var msg Message
		if err := v.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("viewer %v read failed: %v", v.conn.RemoteAddr(), err)
			}
			return
		}
		switch msg.Type {
		case MessageSwitch:
			h.switchRequested.Store(true)
		default:
			log.Debugf("ignore viewer message %q", msg.Type)
		}
	}
}

func (h *Hub) writePump(v *viewer) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.remove(v)
	}()
	for {
		select {
		case b, ok := <-v.send:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				v.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := v.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				log.Warnf("viewer %v write failed: %v", v.conn.RemoteAddr(), err)
				return
			}
		case <-ticker.C:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// checkOrigin 只接受同源页面或本机页面的连接
// 说明：没有Origin头的请求（非浏览器客户端）直接放行
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
