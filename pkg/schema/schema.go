// Package schema holds the static WireScript element registry: one entry
// per built-in element declaring whether it takes inline content, whether
// it takes children, and its typed properties with defaults. Names not in
// the registry deliberately fall back to "acts as a container" so that
// user components parse before their definitions are known.
package schema

// PropType is the declared type of an element property.
type PropType string

const (
	PropBool   PropType = "boolean"
	PropNumber PropType = "number"
	PropString PropType = "string"
	PropSymbol PropType = "symbol"
	PropAny    PropType = "any"
	PropTarget PropType = "target" // navigation target
)

// PropSchema declares one property: its type and default value.
type PropSchema struct {
	Type    PropType    `json:"type"`
	Default interface{} `json:"default,omitempty"`
}

// Schema describes one element. Known is false for the unknown-name
// fallback variant, which allows children and nothing else.
type Schema struct {
	Name            string
	Known           bool
	AcceptsContent  bool
	AcceptsChildren bool
	Props           map[string]PropSchema
}

func leaf(name string, content bool, props map[string]PropSchema) Schema {
	return Schema{Name: name, Known: true, AcceptsContent: content, Props: props}
}

func container(name string, props map[string]PropSchema) Schema {
	return Schema{Name: name, Known: true, AcceptsChildren: true, Props: props}
}

var boxProps = map[string]PropSchema{
	"gap":     {Type: PropNumber, Default: 8.0},
	"pad":     {Type: PropNumber, Default: 0.0},
	"align":   {Type: PropSymbol, Default: "start"},
	"justify": {Type: PropSymbol, Default: "start"},
	"w":       {Type: PropNumber},
	"h":       {Type: PropNumber},
}

var elements = map[string]Schema{
	// Layout containers
	"box":     container("box", boxProps),
	"row":     container("row", boxProps),
	"col":     container("col", boxProps),
	"stack":   container("stack", boxProps),
	"section": container("section", boxProps),
	"card": container("card", map[string]PropSchema{
		"pad":   {Type: PropNumber, Default: 16.0},
		"title": {Type: PropString},
	}),
	"grid": container("grid", map[string]PropSchema{
		"cols": {Type: PropNumber, Default: 2.0},
		"gap":  {Type: PropNumber, Default: 8.0},
	}),
	"form": container("form", map[string]PropSchema{
		"gap": {Type: PropNumber, Default: 8.0},
	}),
	"list": container("list", map[string]PropSchema{
		"ordered": {Type: PropBool, Default: false},
	}),
	"table": container("table", map[string]PropSchema{
		"cols": {Type: PropNumber},
	}),
	"tabs": container("tabs", map[string]PropSchema{
		"active": {Type: PropNumber, Default: 0.0},
	}),
	"tab":     Schema{Name: "tab", Known: true, AcceptsContent: true, AcceptsChildren: true},
	"navbar":  container("navbar", map[string]PropSchema{"title": {Type: PropString}}),
	"sidebar": container("sidebar", map[string]PropSchema{"w": {Type: PropNumber, Default: 240.0}}),
	"header":  container("header", nil),
	"footer":  container("footer", nil),

	// Text leaves
	"text": leaf("text", true, map[string]PropSchema{
		"size":  {Type: PropNumber, Default: 14.0},
		"bold":  {Type: PropBool, Default: false},
		"muted": {Type: PropBool, Default: false},
		"color": {Type: PropSymbol},
	}),
	"heading": leaf("heading", true, map[string]PropSchema{
		"level": {Type: PropNumber, Default: 1.0},
	}),
	"label": leaf("label", true, nil),
	"badge": leaf("badge", true, map[string]PropSchema{
		"color": {Type: PropSymbol},
	}),

	// Interactive leaves
	"button": leaf("button", true, map[string]PropSchema{
		"variant":  {Type: PropSymbol, Default: "primary"},
		"disabled": {Type: PropBool, Default: false},
		"to":       {Type: PropTarget},
	}),
	"link": leaf("link", true, map[string]PropSchema{
		"to":       {Type: PropTarget},
		"external": {Type: PropBool, Default: false},
	}),
	"input": leaf("input", false, map[string]PropSchema{
		"placeholder": {Type: PropString},
		"type":        {Type: PropSymbol, Default: "text"},
		"value":       {Type: PropString},
		"disabled":    {Type: PropBool, Default: false},
	}),
	"textarea": leaf("textarea", false, map[string]PropSchema{
		"placeholder": {Type: PropString},
		"rows":        {Type: PropNumber, Default: 3.0},
	}),
	"checkbox": leaf("checkbox", false, map[string]PropSchema{
		"label":   {Type: PropString},
		"checked": {Type: PropBool, Default: false},
	}),
	"radio": leaf("radio", false, map[string]PropSchema{
		"label":    {Type: PropString},
		"selected": {Type: PropBool, Default: false},
	}),
	"select": leaf("select", false, map[string]PropSchema{
		"placeholder": {Type: PropString},
		"value":       {Type: PropString},
	}),
	"toggle": leaf("toggle", false, map[string]PropSchema{
		"label": {Type: PropString},
		"on":    {Type: PropBool, Default: false},
	}),
	"slider": leaf("slider", false, map[string]PropSchema{
		"min":   {Type: PropNumber, Default: 0.0},
		"max":   {Type: PropNumber, Default: 100.0},
		"value": {Type: PropNumber, Default: 50.0},
	}),

	// Media and decoration leaves
	"image": leaf("image", false, map[string]PropSchema{
		"src": {Type: PropString},
		"alt": {Type: PropString},
		"w":   {Type: PropNumber},
		"h":   {Type: PropNumber},
	}),
	"icon": leaf("icon", false, map[string]PropSchema{
		"name": {Type: PropSymbol},
		"size": {Type: PropNumber, Default: 16.0},
	}),
	"avatar": leaf("avatar", false, map[string]PropSchema{
		"name": {Type: PropString},
		"size": {Type: PropNumber, Default: 32.0},
	}),
	"progress": leaf("progress", false, map[string]PropSchema{
		"value": {Type: PropNumber, Default: 0.0},
		"max":   {Type: PropNumber, Default: 100.0},
	}),
	"divider": leaf("divider", false, nil),
	"spacer": leaf("spacer", false, map[string]PropSchema{
		"size": {Type: PropNumber, Default: 8.0},
	}),

	// Structural marker inside layout bodies
	"slot": leaf("slot", false, nil),
}

// overlayProps is the fixed property schema shared by every overlay kind.
var overlayProps = map[string]PropSchema{
	"title":       {Type: PropString},
	"size":        {Type: PropSymbol, Default: "md"},
	"position":    {Type: PropSymbol, Default: "right"},
	"dismissible": {Type: PropBool, Default: true},
}

// topLevelOnly names forms that may only ever appear as a direct child of
// the document root.
var topLevelOnly = map[string]bool{
	"meta":    true,
	"screen":  true,
	"define":  true,
	"layout":  true,
	"include": true,
}

// overlayKinds names forms that may only ever appear as a direct child of
// a screen.
var overlayKinds = map[string]bool{
	"modal":   true,
	"drawer":  true,
	"popover": true,
	"toast":   true,
}

// structural names forms that are always treated as containers regardless
// of the registry.
var structural = map[string]bool{
	"wire":   true,
	"screen": true,
	"define": true,
	"layout": true,
	"repeat": true,
	"meta":   true,
}

// Lookup returns the schema for a built-in element name.
func Lookup(name string) (Schema, bool) {
	s, ok := elements[name]
	return s, ok
}

// LookupOrContainer returns the schema for a name, defaulting unknown names
// to the container fallback (children allowed, Known=false). Callers must
// treat such names as potential user components, never reject them.
func LookupOrContainer(name string) Schema {
	if s, ok := elements[name]; ok {
		return s
	}
	return Schema{Name: name, AcceptsChildren: true}
}

// IsTopLevelOnly reports whether the form may only appear directly under
// the document root.
func IsTopLevelOnly(name string) bool {
	return topLevelOnly[name]
}

// IsOverlayKind reports whether the form is an overlay attached to a screen.
func IsOverlayKind(name string) bool {
	return overlayKinds[name]
}

// IsStructural reports whether the form is a structural container that
// always accepts children regardless of the registry.
func IsStructural(name string) bool {
	return structural[name]
}

// AllowsChildren reports whether a form opened with this name can hold
// child forms: structural containers, overlay kinds, registered containers,
// and unknown names (treated as user components) all do.
func AllowsChildren(name string) bool {
	if structural[name] || overlayKinds[name] {
		return true
	}
	return LookupOrContainer(name).AcceptsChildren
}

// PropOf returns the declared schema for one property of an element, if any.
func PropOf(element, prop string) (PropSchema, bool) {
	s, ok := elements[element]
	if !ok {
		return PropSchema{}, false
	}
	p, ok := s.Props[prop]
	return p, ok
}

// OverlayProp returns the declared schema for one overlay property, if any.
func OverlayProp(prop string) (PropSchema, bool) {
	p, ok := overlayProps[prop]
	return p, ok
}
