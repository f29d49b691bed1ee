package entity

import (
	"git.fiblab.net/general/common/v2/geometry"
)

// 路口几何布局（像素）
const (
	ScreenW = 600 // 画面宽
	ScreenH = 600 // 画面高
	Center  = ScreenW / 2
	BoxSize = 200 // 路口区域边长

	IntersectionX1 = Center - BoxSize/2
	IntersectionX2 = Center + BoxSize/2
	IntersectionY1 = Center - BoxSize/2
	IntersectionY2 = Center + BoxSize/2

	CarLength  = 25 // 车长
	CarWidth   = 15 // 车宽
	CarGap     = 25 // 跟车最小间距
	StopMargin = 10 // 停车线与路口边界的距离
	LaneOffset = 40 // 车道中心线与画面中心的距离
	ExitMargin = 50 // 驶出画面多远后移除车辆
)

// SpawnPoint 车辆生成位置
// 功能：返回指定方向车辆的初始位置，位于画面外一个车长处
func SpawnPoint(d Direction) geometry.Point {
	switch d {
	case North:
		return geometry.Point{X: Center - LaneOffset, Y: ScreenH + CarLength}
	case South:
		return geometry.Point{X: Center + LaneOffset, Y: -CarLength}
	case East:
		return geometry.Point{X: -CarLength, Y: Center - LaneOffset}
	case West:
		return geometry.Point{X: ScreenW + CarLength, Y: Center + LaneOffset}
	}
	log.Panicf("bad direction %v", d)
	return geometry.Point{}
}

// InIntersection 判断位置是否在路口区域内（含边界）
func InIntersection(p geometry.Point) bool {
	return IntersectionX1 <= p.X && p.X <= IntersectionX2 &&
		IntersectionY1 <= p.Y && p.Y <= IntersectionY2
}

// Exited 判断指定方向的车辆是否已越过画面远端的移除边界
func Exited(d Direction, p geometry.Point) bool {
	switch d {
	case North:
		return p.Y <= -ExitMargin
	case South:
		return p.Y >= ScreenH+ExitMargin
	case East:
		return p.X >= ScreenW+ExitMargin
	case West:
		return p.X <= -ExitMargin
	}
	log.Panicf("bad direction %v", d)
	return false
}
