package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"cvdrisk/risk"
)

// 会话消息读写超时
const (
	sessionWriteWait = 10 * time.Second
	sessionPongWait  = 60 * time.Second
	sessionPingEvery = 50 * time.Second
)

var sessionUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // 演示服务，与CORS中间件保持一致
	},
}

// sessionRequest 客户端每次交互推送的输入快照
type sessionRequest struct {
	Features map[string]float64 `json:"features"`
	Submit   bool               `json:"submit"`
}

// sessionResponse 服务端对每个快照的应答
type sessionResponse struct {
	Type       string                 `json:"type"` // valid | invalid | result | error
	Error      string                 `json:"error,omitempty"`
	Validation *risk.ValidationError  `json:"validation,omitempty"`
	Result     *risk.PredictionResult `json:"result,omitempty"`
}

// RegisterSessionHandlers 注册WebSocket会话端点
func RegisterSessionHandlers(mux *http.ServeMux, logger *zap.Logger) {
	mux.HandleFunc("GET /ws/session", func(w http.ResponseWriter, r *http.Request) {
		handleSession(w, r, logger)
	})
}

// handleSession 按交互重新计算：客户端每次修改输入都推送一个快照，
// 服务端即时校验；提交时返回完整预测结果。
func handleSession(w http.ResponseWriter, r *http.Request, logger *zap.Logger) {
	if classifier == nil || explainer == nil || refCohort == nil {
		http.Error(w, "predictor not initialized", http.StatusServiceUnavailable)
		return
	}

	conn, err := sessionUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	lang := risk.MatchAdvisoryLanguage(r.Header.Get("Accept-Language"))

	conn.SetReadDeadline(time.Now().Add(sessionPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(sessionPongWait))
	})

	ping := time.NewTicker(sessionPingEvery)
	defer ping.Stop()
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ping.C:
				// WriteControl可以与主循环的WriteJSON并发调用，
				// 数据帧写入则不行
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(sessionWriteWait)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	for {
		var req sessionRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("session read failed", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(sessionPongWait))

		resp := evaluateSession(req, lang)
		conn.SetWriteDeadline(time.Now().Add(sessionWriteWait))
		if err := conn.WriteJSON(resp); err != nil {
			logger.Warn("session write failed", zap.Error(err))
			return
		}
	}
}

func evaluateSession(req sessionRequest, lang language.Tag) sessionResponse {
	if !req.Submit {
		if _, err := risk.Validate(specs, req.Features); err != nil {
			return validationResponse(err)
		}
		return sessionResponse{Type: "valid"}
	}

	result, err := risk.Predict(classifier, explainer, refCohort, specs, req.Features, lang)
	if err != nil {
		var verr *risk.ValidationError
		if errors.As(err, &verr) {
			return validationResponse(err)
		}
		return sessionResponse{Type: "error", Error: err.Error()}
	}
	return sessionResponse{Type: "result", Result: result}
}

func validationResponse(err error) sessionResponse {
	var verr *risk.ValidationError
	if errors.As(err, &verr) {
		return sessionResponse{Type: "invalid", Error: verr.Error(), Validation: verr}
	}
	return sessionResponse{Type: "error", Error: err.Error()}
}
