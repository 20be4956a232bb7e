package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// WebSocketHandler serves Requests over a websocket.
//
// Each text message is a Request, and each gets a Response.  A
// connection processes its Requests in order.
func (s *Service) WebSocketHandler(ctx context.Context) http.Handler {
	var upgrader = websocket.Upgrader{} // use default options

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error", err)
			return
		}
		defer c.Close()

		id := c.RemoteAddr().String()
		s.logf("websocket %s connected", id)

		// Interrupt the ReadMessage below when we're done.
		done := make(chan struct{})
		defer close(done)
		go func() {
			select {
			case <-ctx.Done():
				c.Close()
			case <-done:
			}
		}()

		for {
			mt, message, err := c.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Println("read error", err)
				}
				break
			}

			var (
				req  Request
				resp *Response
			)
			if err := json.Unmarshal(message, &req); err != nil {
				resp = &Response{
					Err: (&BadRequest{err.Error()}).Error(),
				}
			} else {
				resp, _ = s.Decide(ctx, &req)
			}

			js, err := json.Marshal(resp)
			if err != nil {
				log.Printf("websocket Marshal error %v on %#v", err, resp)
				continue
			}
			if err = c.WriteMessage(mt, js); err != nil {
				log.Println("write error", err)
				break
			}
		}

		s.logf("websocket %s disconnected", id)
	})
}
