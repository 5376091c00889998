// Package signaling implements the websocket relay that brokers WebRTC
// session setup between meeting participants: room membership fan-out and
// point-to-point forwarding of offer/answer/candidate payloads, which the
// relay never interprets.
package signaling
