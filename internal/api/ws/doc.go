// Package ws implements the event stream at GET /stream.
//
// Outbound, the Hub implements terminal.Emitter: every PTY output and exit
// event is encoded once and queued to each connected client. Queues are
// bounded; a client that falls SendQueueSize frames behind is disconnected
// so a slow consumer can never stall a session's output relay.
//
// Inbound frames:
//
//	{"type":"invoke","request_id":"1","tool_id":"terminal.write","params":{...}}
//	{"type":"ping"}
//
// Replies:
//
//	{"type":"result","request_id":"1","result":{"success":true,"data":{...}}}
//	{"type":"pong"}
//	{"type":"error","message":"..."}
//
// Events:
//
//	{"type":"event","event":"pty-output-<id>","payload":"..."}
package ws
