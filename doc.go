// Package antixss provides a policy-driven HTML sanitizer built on a
// streaming document model.
//
// # Overview
//
// antixss tokenizes HTML (or plain text) with golang.org/x/net/html,
// builds a compact document tree in memory, and renders that tree back
// to HTML or text. Only what the document model can represent survives
// the round trip. Scripts and event handlers have no way through, and
// misnested or broken markup comes out well formed.
//
// # Policies
//
// A [Policy] controls:
//   - Which element tags are allowed ([Policy.AllowedTags])
//   - Which attributes are allowed per tag ([Policy.AllowedAttributes])
//   - Which URL schemes are allowed in href/src/cite ([Policy.AllowedSchemes])
//   - Whether disallowed tags are stripped (removed with children) or escaped ([Policy.StripDisallowed])
//   - Zero or more [Transformer] callbacks that can mutate allowed tags
//   - Whether plain-text URLs in text become clickable links ([Policy.Linkify])
//   - A maximum element nesting depth ([Policy.MaxDepth])
//
// Two built-in policies are provided:
//   - [DefaultPolicy]: a permissive but safe policy covering common
//     content tags. Good starting point for blog posts, articles, etc.
//   - [StrictPolicy]: a minimal policy allowing only basic inline
//     formatting with no attributes. Good for comment sections.
//
// # Limits
//
// Every conversion runs inside the [Limits] of its [Config]: nesting
// depth, node and text storage, and formatting state. A document that
// exceeds them fails with an error wrapping [ErrDocumentTooComplex]
// instead of growing without bound. [LoadConfig] reads a Config from
// YAML.
//
// # Security
//
// antixss defends against common XSS vectors including:
//   - Script injection via <script> tags
//   - Event handler attributes (onclick, onerror, etc.)
//   - javascript: and data: URL schemes (including entity-encoded forms)
//   - CSS expression injection via style attributes, which are parsed
//     and re-emitted from known values only
//
// It does NOT provide a Content Security Policy header; pair with
// proper HTTP headers for defence in depth.
//
// # Thread Safety
//
// Sanitize, StripTags, TextToHTML and [Converter] methods are safe for
// concurrent use. Policy structs should not be mutated after first use.
//
// # Example
//
//	p := antixss.DefaultPolicy()
//	clean, err := antixss.Sanitize(userInput, p)
package antixss
