// Package internal contains the implementation packages for folio.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - contact: the contact form controller, its UI port and Sender
//   - htmlsurface: the UI port over a parsed HTML document
//   - dom: the UI port and page behaviors in the browser (js/wasm)
//   - gallery: project catalog, filtering and card transitions
//   - effects: scroll and pointer effects as pure functions
//   - theme: the stored light/dark preference
//   - server: the portfolio page, no-script fallbacks and the live surface
//   - live: the live connection's messages and its client
//   - websocket: connection manager the live surface runs on
//   - config, errors, logging, validation, version, watcher: ambient support
//
// # Inter-Package Communication
//
// The controller never sees a concrete surface. Each surface implements
// contact.UI and hands the controller a Sender:
//
//   - The server renders the page, parses it with htmlsurface and runs one
//     attempt for clients without scripting
//   - The live surface pushes each UI operation over a websocket and the
//     page applies it with live.Apply
//   - The dom package runs attempts in the page itself while no live
//     connection is up
//   - The contact command prints each operation to the terminal
//
// The watcher reloads the project catalog and the theme file and the
// server broadcasts both to connected pages.
package internal
