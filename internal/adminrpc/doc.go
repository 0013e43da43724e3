// Package adminrpc describes the staff gRPC service shared by the site
// server and the admin CLI: the message types, the service descriptor, a
// client stub and the JSON codec the messages travel in.
//
// Both sides select the codec with the "json" content subtype, so no
// protobuf schema is involved.
package adminrpc
