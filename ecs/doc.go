// Package ecs provides ECS adapters for rowan.
//
// The primary adapter is [NewDonburiTree], which backs a [rowan.EntityTree]
// with a [Donburi] world. Scene node attach and despawn are published to
// [NodeEventType] as typed events; subscribe in your ECS systems with
// events.Subscribe and drain with ProcessEvents.
//
// Usage:
//
//	tree := ecs.NewDonburiTree(world)
//	engine := rowan.NewEngine(tree)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
