// Package effects computes the cosmetic scroll and pointer effects of the
// portfolio page. Everything here is a pure function of viewport values.
package effects

import (
	"strconv"
	"time"
)

// Scroll thresholds and factors.
const (
	NavbarShadowThreshold = 50.0
	ParallaxFactor        = 0.5
	MouseFollowScale      = 5.0
	SkillRevealDelay      = 200 * time.Millisecond
)

// NavbarShadow values.
const (
	ShadowRaised = "0 4px 12px rgba(0, 0, 0, 0.1)"
	ShadowNone   = "none"
)

// Class names toggled on page elements.
const (
	FadeInClass = "fade-in-up"
	ActiveClass = "active"
)

// Observer settings for the section fade-in.
const (
	SectionThreshold  = 0.1
	SectionRootMargin = "0px 0px -50px 0px"
	SkillThreshold    = 0.5
)

// NavbarShadow returns the header box-shadow for a scroll offset.
func NavbarShadow(scrollY float64) string {
	if scrollY > NavbarShadowThreshold {
		return ShadowRaised
	}
	return ShadowNone
}

// ParallaxPosition returns the hero background-position for a scroll offset.
func ParallaxPosition(scrollY float64) string {
	return "0% " + px(scrollY*ParallaxFactor)
}

// MouseFollow returns the transform applied to the hero artwork for a
// pointer position inside a viewport.
func MouseFollow(viewW, viewH, clientX, clientY float64) string {
	x := (viewW - clientX*2) / 100
	y := (viewH - clientY*2) / 100
	return "translateX(" + px(x*MouseFollowScale) + ") translateY(" + px(y*MouseFollowScale) + ")"
}

// SkillWidth is the two-step reveal of a skill bar: it collapses to zero,
// then returns to Target after SkillRevealDelay.
type SkillWidth struct {
	Collapsed string
	Target    string
	Delay     time.Duration
}

// SkillReveal returns the reveal steps for a bar whose width is target.
func SkillReveal(target string) SkillWidth {
	return SkillWidth{Collapsed: "0", Target: target, Delay: SkillRevealDelay}
}

// MenuState tracks the mobile menu. The hamburger and the link list share
// the active class.
type MenuState struct {
	Open bool
}

// Toggle flips the menu.
func (m *MenuState) Toggle() { m.Open = !m.Open }

// Close shuts the menu, as when a link is followed.
func (m *MenuState) Close() { m.Open = false }

// Class returns the class the hamburger and links carry.
func (m MenuState) Class() string {
	if m.Open {
		return ActiveClass
	}
	return ""
}

func px(v float64) string {
	if v == 0 {
		v = 0 // drops the sign of -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
