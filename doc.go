// Package rowan is a declarative scene/asset document engine for
// entity-component runtimes.
//
// Rowan parses COB documents — line-oriented, human-editable files describing
// hierarchical UI scene trees, commands, constants, scene macros, and specs —
// and materializes them as live entity hierarchies. When a source file
// changes, rowan reconciles every live copy of the affected scenes in place:
// nodes are inserted, moved, or despawned, and changed loadable values are
// reverted and reapplied, without rebuilding the world.
//
// # Quick start
//
// Create an [Engine] around your entity runtime, register loadable types,
// feed it file bytes, and spawn scenes once loading completes:
//
//	tree := ecs.NewDonburiTree(world)
//	eng := rowan.NewEngine(tree)
//	eng.Types().Register("BgColor", applyBg, revertBg)
//
//	eng.AddRaw("main.cob", src)
//	eng.Process()
//
//	if eng.Loaded() {
//		eng.SpawnScene(rowan.NewSceneRef("main.cob", "root"), nil)
//	}
//
// On a file change, call [Engine.AddRaw] with the new bytes followed by
// [Engine.Process] and [Engine.ApplyPending]; all live scene instances are
// patched to match.
//
// # Documents
//
// COB files contain up to five kinds of section:
//
//	#manifest        file aliases (self as main)
//	#import          dependency list (widgets.core as w)
//	#defs            $constants, +scene_macros, *specs
//	#commands        loadables applied globally, in dependency order
//	#scenes          scene trees of named nodes and loadables
//
// Parsing preserves whitespace and comments ("fill") exactly, so an unedited
// document re-serializes byte-identically. See [Parse] and
// [Document.Serialize].
//
// Rowan performs no file I/O and no rendering. Bytes arrive through
// [Engine.AddRaw]; entities are spawned through the [EntityTree] interface
// (see the ecs subpackage for a Donburi-backed implementation).
package rowan
