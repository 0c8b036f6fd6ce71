// Package ast defines the WireScript document model.
package ast

// Span represents a source location range.
type Span struct {
	File      string `json:"file,omitempty"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// --- Property values ---

// PropValue is the interface for coerced property values. A property map
// holds one of: BoolValue, NumberValue, StringValue, SymbolValue, ParamRef,
// or NavTarget, depending on the declared schema type of the property.
type PropValue interface {
	propValueNode() // sealed marker
}

type BoolValue struct {
	Value bool
}

func (v BoolValue) propValueNode() {}

type NumberValue struct {
	Value float64
}

func (v NumberValue) propValueNode() {}

type StringValue struct {
	Value string
}

func (v StringValue) propValueNode() {}

// SymbolValue holds a bare word that the schema declared as symbol-typed
// (or that landed in an any-typed property).
type SymbolValue struct {
	Value string
}

func (v SymbolValue) propValueNode() {}

// ParamRef is a $name placeholder substituted at expansion time. It is a
// distinct value type and is never coerced during parsing.
type ParamRef struct {
	Name string
}

func (v ParamRef) propValueNode() {}

// TargetKind discriminates NavTarget variants.
type TargetKind string

const (
	TargetScreen  TargetKind = "screen"
	TargetOverlay TargetKind = "overlay"
	TargetAction  TargetKind = "action"
	TargetURL     TargetKind = "url"
)

// NavTarget is a navigation destination: a screen id, an overlay id
// (written #id), an action keyword (:close, :back, :submit), or an
// external URL.
type NavTarget struct {
	Kind  TargetKind
	Value string
}

func (v NavTarget) propValueNode() {}

// --- Content ---

// Content is the inline text of an element: either a literal string or a
// ParamRef to be substituted at expansion time.
type Content interface {
	contentNode() // sealed marker
}

type TextContent struct {
	Value string
}

func (c TextContent) contentNode() {}

type ParamContent struct {
	Name string
}

func (c ParamContent) contentNode() {}

// --- Count ---

// Count is a repeat count: a fixed integer or a ParamRef.
type Count interface {
	countNode() // sealed marker
}

type FixedCount struct {
	Value int
}

func (c FixedCount) countNode() {}

type ParamCount struct {
	Name string
}

func (c ParamCount) countNode() {}

// --- Element tree ---

// BodyNode is a child of an element body: an ElementNode or a RepeatNode.
type BodyNode interface {
	Node
	bodyNode() // sealed marker
}

// ElementNode is a single element invocation. IsComponent marks names not
// found in the schema registry; those are treated as user-component
// invocations and resolved by the expansion layer.
type ElementNode struct {
	Span        Span
	Name        string
	Content     Content
	Props       map[string]PropValue
	Children    []BodyNode
	IsComponent bool
}

func (n *ElementNode) Kind() string   { return "ElementNode" }
func (n *ElementNode) NodeSpan() Span { return n.Span }
func (n *ElementNode) bodyNode()      {}

// RepeatNode clones its body Count times at expansion time.
type RepeatNode struct {
	Span Span
	Num  Count
	Var  string // optional loop variable name
	Body *ElementNode
}

func (n *RepeatNode) Kind() string   { return "RepeatNode" }
func (n *RepeatNode) NodeSpan() Span { return n.Span }
func (n *RepeatNode) bodyNode()      {}

// --- Screens and overlays ---

// OverlayNode is a modal/drawer/popover/toast attached to a screen. It is
// legal only as a direct child of screen and is lifted out of the screen
// body during parsing.
type OverlayNode struct {
	Span     Span
	Overlay  string // overlay kind (one of schema.OverlayKinds)
	ID       string
	Props    map[string]PropValue
	Children []BodyNode
}

func (n *OverlayNode) Kind() string   { return "OverlayNode" }
func (n *OverlayNode) NodeSpan() Span { return n.Span }

// ScreenNode is one navigable wireframe page.
type ScreenNode struct {
	Span     Span
	ID       string
	Name     string // optional display name
	Viewport string // optional viewport symbol (mobile, tablet, desktop, wide)
	Layout   string // optional layout name reference
	Root     *ElementNode
	Overlays []*OverlayNode
}

func (n *ScreenNode) Kind() string   { return "ScreenNode" }
func (n *ScreenNode) NodeSpan() Span { return n.Span }

// --- Definitions ---

// ComponentDef is a named, parameterized, reusable element subtree.
// Definitions may appear after first use; call sites are resolved by name
// at expansion time, not declaration order.
type ComponentDef struct {
	Span   Span
	Name   string
	Params []string
	Body   *ElementNode
}

func (n *ComponentDef) Kind() string   { return "ComponentDef" }
func (n *ComponentDef) NodeSpan() Span { return n.Span }

// LayoutNode is a named page skeleton whose body contains a slot element
// marking where a screen's own root is substituted.
type LayoutNode struct {
	Span Span
	Name string
	Body *ElementNode
}

func (n *LayoutNode) Kind() string   { return "LayoutNode" }
func (n *LayoutNode) NodeSpan() Span { return n.Span }

// IncludeDirective records an (include "path") form for the compiler to
// resolve through the injected resolver callback.
type IncludeDirective struct {
	Span Span
	Path string
}

func (n *IncludeDirective) Kind() string   { return "IncludeDirective" }
func (n *IncludeDirective) NodeSpan() Span { return n.Span }

// --- Document ---

// Document is the root compiled artifact. Components and Layouts keep
// declaration order in the slices; ComponentsByName and LayoutsByName are
// the order-independent lookup tables used by the expansion layer.
type Document struct {
	Span             Span
	Meta             map[string]PropValue
	Screens          []*ScreenNode
	Components       []*ComponentDef
	Layouts          []*LayoutNode
	Includes         []*IncludeDirective
	ComponentsByName map[string]*ComponentDef
	LayoutsByName    map[string]*LayoutNode
}

func (n *Document) Kind() string   { return "Document" }
func (n *Document) NodeSpan() Span { return n.Span }

// NewDocument returns an empty document with initialized maps.
func NewDocument() *Document {
	return &Document{
		Meta:             make(map[string]PropValue),
		ComponentsByName: make(map[string]*ComponentDef),
		LayoutsByName:    make(map[string]*LayoutNode),
	}
}

// AddComponent records a definition in both the ordered list and the
// lookup table. A later definition with the same name wins the lookup.
func (n *Document) AddComponent(def *ComponentDef) {
	n.Components = append(n.Components, def)
	n.ComponentsByName[def.Name] = def
}

// AddLayout records a layout in both the ordered list and the lookup table.
func (n *Document) AddLayout(l *LayoutNode) {
	n.Layouts = append(n.Layouts, l)
	n.LayoutsByName[l.Name] = l
}
