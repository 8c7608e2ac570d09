package bndl2py

import "github.com/KDB-USJP/BNDL-Lite/pkg/tree"

// coreHelpers are the socket and link helpers every generated script
// carries. Socket lookups take a 1-based occurrence number because
// several node kinds expose multiple inputs sharing one label.
var coreHelpers = []string{
	"def _in(node, name, nth=1):",
	"    seen = 0",
	"    for sock in node.inputs:",
	"        if sock.name == name:",
	"            seen += 1",
	"            if seen == nth:",
	"                return sock",
	`    print("[BNDL] no input %s[%d] on %s" % (name, nth, node.name))`,
	"    return None",
	"",
	"",
	"def _out(node, name, nth=1):",
	"    seen = 0",
	"    for sock in node.outputs:",
	"        if sock.name == name:",
	"            seen += 1",
	"            if seen == nth:",
	"                return sock",
	`    print("[BNDL] no output %s[%d] on %s" % (name, nth, node.name))`,
	"    return None",
	"",
	"",
	"def _link(tree, a, b):",
	"    if a is not None and b is not None:",
	"        tree.links.new(a, b)",
	"",
	"",
	"def _set_input(node, name, nth, value):",
	"    sock = _in(node, name, nth)",
	`    if sock is not None and hasattr(sock, "default_value"):`,
	"        try:",
	"            sock.default_value = value",
	"        except (TypeError, ValueError):",
	`            print("[BNDL] cannot set %s on %s" % (name, node.name))`,
	"",
	"",
}

// curveHelper appends and positions curve mapping points. Points are
// grown with .new because fresh curves start with two.
var curveHelper = []string{
	"def _curve_point(node, curve, point, x, y, handle):",
	`    mapping = getattr(node, "mapping", None)`,
	"    if mapping is None or curve >= len(mapping.curves):",
	`        print("[BNDL] no curve %d on %s" % (curve, node.name))`,
	"        return",
	"    points = mapping.curves[curve].points",
	"    while len(points) <= point:",
	"        points.new(0.0, 0.0)",
	"    points[point].location = (x, y)",
	"    points[point].handle_type = handle",
	"    mapping.update()",
	"",
	"",
}

type dbHelper struct {
	kind tree.DatablockKind
	fn   string
	body []string
}

func helperFor(kind tree.DatablockKind) (dbHelper, bool) {
	for _, h := range datablockHelperOrder {
		if h.kind == kind {
			return h, true
		}
	}
	return dbHelper{}, false
}

// datablockHelperOrder lists the per-kind lookup helpers in prelude
// order. Each one honors ASSET_MODE: existing datablocks are reused,
// missing ones get a placeholder unless the mode is "none".
var datablockHelperOrder = []dbHelper{
	{kind: tree.DatablockMaterial, fn: "_material", body: []string{
		"def _material(name):",
		"    mat = bpy.data.materials.get(name)",
		`    if mat is None and ASSET_MODE != "none":`,
		"        mat = bpy.data.materials.new(name)",
		"    if mat is None:",
		`        print("[BNDL] missing material: " + name)`,
		"    return mat",
		"",
		"",
	}},
	{kind: tree.DatablockObject, fn: "_object", body: []string{
		"def _object(name):",
		"    obj = bpy.data.objects.get(name)",
		`    if obj is None and ASSET_MODE != "none":`,
		"        obj = bpy.data.objects.new(name, bpy.data.meshes.new(name))",
		"        bpy.context.scene.collection.objects.link(obj)",
		"    if obj is None:",
		`        print("[BNDL] missing object: " + name)`,
		"    return obj",
		"",
		"",
	}},
	{kind: tree.DatablockCollection, fn: "_collection", body: []string{
		"def _collection(name):",
		"    col = bpy.data.collections.get(name)",
		`    if col is None and ASSET_MODE != "none":`,
		"        col = bpy.data.collections.new(name)",
		"        bpy.context.scene.collection.children.link(col)",
		"    if col is None:",
		`        print("[BNDL] missing collection: " + name)`,
		"    return col",
		"",
		"",
	}},
	{kind: tree.DatablockImage, fn: "_image", body: []string{
		"def _image(name):",
		"    img = bpy.data.images.get(name)",
		`    if img is None and ASSET_MODE != "none":`,
		"        img = bpy.data.images.new(name, 8, 8)",
		"    if img is None:",
		`        print("[BNDL] missing image: " + name)`,
		"    return img",
		"",
		"",
	}},
	{kind: tree.DatablockMesh, fn: "_mesh", body: []string{
		"def _mesh(name):",
		"    me = bpy.data.meshes.get(name)",
		`    if me is None and ASSET_MODE != "none":`,
		"        me = bpy.data.meshes.new(name)",
		"    if me is None:",
		`        print("[BNDL] missing mesh: " + name)`,
		"    return me",
		"",
		"",
	}},
	{kind: tree.DatablockCurve, fn: "_curve", body: []string{
		"def _curve(name):",
		"    cu = bpy.data.curves.get(name)",
		`    if cu is None and ASSET_MODE != "none":`,
		"        cu = bpy.data.curves.new(name, 'CURVE')",
		"    if cu is None:",
		`        print("[BNDL] missing curve: " + name)`,
		"    return cu",
		"",
		"",
	}},
	{kind: tree.DatablockText, fn: "_text", body: []string{
		"def _text(name):",
		"    cu = bpy.data.curves.get(name)",
		`    if cu is None and ASSET_MODE != "none":`,
		"        cu = bpy.data.curves.new(name, 'FONT')",
		"    if cu is None:",
		`        print("[BNDL] missing text curve: " + name)`,
		"    return cu",
		"",
		"",
	}},
	{kind: tree.DatablockArmature, fn: "_armature", body: []string{
		"def _armature(name):",
		"    arm = bpy.data.armatures.get(name)",
		`    if arm is None and ASSET_MODE != "none":`,
		"        arm = bpy.data.armatures.new(name)",
		"    if arm is None:",
		`        print("[BNDL] missing armature: " + name)`,
		"    return arm",
		"",
		"",
	}},
	{kind: tree.DatablockCamera, fn: "_camera", body: []string{
		"def _camera(name):",
		"    cam = bpy.data.cameras.get(name)",
		`    if cam is None and ASSET_MODE != "none":`,
		"        cam = bpy.data.cameras.new(name)",
		"    if cam is None:",
		`        print("[BNDL] missing camera: " + name)`,
		"    return cam",
		"",
		"",
	}},
	{kind: tree.DatablockLight, fn: "_light", body: []string{
		"def _light(name):",
		"    li = bpy.data.lights.get(name)",
		`    if li is None and ASSET_MODE != "none":`,
		"        li = bpy.data.lights.new(name, 'POINT')",
		"    if li is None:",
		`        print("[BNDL] missing light: " + name)`,
		"    return li",
		"",
		"",
	}},
}
