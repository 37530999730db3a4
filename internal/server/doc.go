// Package server carries chat sessions over WebSocket.
//
// The Hub tracks live connections and their room groups and implements
// chat.Transport. Each Client runs a read pump that decodes request frames,
// applies the rate limit and drives the session controller, and a write pump
// that drains the client's outbound queue. The rest of the package holds the
// configuration, the origin policy and the chi routes.
package server
