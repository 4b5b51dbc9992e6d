// Package websocket pushes dataset lifecycle events to connected browsers.
//
// A Hub owns the client set and fans out messages; each Client runs a read
// pump (keeps the connection alive, discards input) and a write pump (drains
// its send buffer, sends pings). Clients that fall behind are dropped rather
// than slowing down the broadcast.
package websocket
