// Package scene loads declarative animation trees and plays them on a stage.
//
// A scene file (YAML or JSON) declares named routers, a tree of animated nodes
// and an optional script of router changes:
//
//	name: sky
//	routers:
//	  - name: moon
//	nodes:
//	  - id: moon
//	    router: moon
//	    when:
//	      - if: [visible]
//	        animation: {kind: fade, duration: 300ms}
//	      - if: [hidden]
//	        animation: {kind: fade_out, duration: 300ms}
//	script:
//	  - {router: moon, action: show}
//	  - {after: 1s, router: moon, action: hide}
//
// Children inherit their parent's router unless they name one.
package scene
