// Package websocket pushes word search state to browsers and accepts
// pointer input from them.
//
// A central Hub groups connections by session ID. Each connection has a
// read goroutine and a write goroutine; the hub owns the client set.
//
// Outgoing messages are JSON objects, one per frame:
//
//	{"session_id":"ab12","event":"state_update","game_state":{...}}
//	{"session_id":"ab12","event":"word_found","data":{...}}
//	{"session_id":"ab12","event":"error","data":{"error":"..."}}
//
// Incoming messages drive the selection engine of the connection's session:
//
//	{"action":"engage","row":2,"col":3}
//	{"action":"enter","row":2,"col":4}
//	{"action":"commit"}
//	{"action":"leave"}
//
// The hub does not interpret input itself. The host installs an
// InputHandler that applies it to the session and broadcasts the result.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	hub.SetInputHandler(func(ctx context.Context, id string, in websocket.InputMessage) error {
//		...
//	})
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
