package docx

import (
	"strconv"
	"strings"
)

// LevelFormat describes how one level of a numbering instance renders.
// Known is false when numbering.xml has no definition for the level.
// Start values are not carried: list counters are shared by every list of
// a document and always count from one.
type LevelFormat struct {
	Known  bool
	Bullet bool
	Glyph  string // renderable bullet glyph, or "" to use the default
}

// NumberingResolver resolves numbering definitions from numbering.xml.
type NumberingResolver struct {
	abstractNums map[string]*abstractNumXML // abstractNumId -> definition
	nums         map[string]*numXML         // numId -> instance
}

// NewNumberingResolver creates a resolver from parsed numbering.xml.
func NewNumberingResolver(numbering *numberingXML) *NumberingResolver {
	nr := &NumberingResolver{
		abstractNums: make(map[string]*abstractNumXML),
		nums:         make(map[string]*numXML),
	}

	if numbering == nil {
		return nr
	}

	for i := range numbering.AbstractNums {
		an := &numbering.AbstractNums[i]
		nr.abstractNums[an.AbstractNumID] = an
	}
	for i := range numbering.Nums {
		num := &numbering.Nums[i]
		nr.nums[num.NumID] = num
	}

	return nr
}

// ResolveLevel returns the format of a numbering instance at a level.
func (nr *NumberingResolver) ResolveLevel(numID string, level int) LevelFormat {
	var f LevelFormat

	num, ok := nr.nums[numID]
	if !ok {
		return f
	}

	levelStr := strconv.Itoa(level)
	var lvl *lvlXML
	for i := range num.Overrides {
		if o := &num.Overrides[i]; o.ILvl == levelStr && o.Lvl != nil {
			lvl = o.Lvl
		}
	}

	if lvl == nil {
		if abstract, ok := nr.abstractNums[num.AbstractNumID.Val]; ok {
			for i := range abstract.Levels {
				if abstract.Levels[i].ILvl == levelStr {
					lvl = &abstract.Levels[i]
					break
				}
			}
		}
	}
	if lvl == nil {
		return f
	}

	f.Known = true
	if lvl.NumFmt.Val == "bullet" {
		f.Bullet = true
		if text := lvl.LvlText.Val; text != "" && !strings.Contains(text, "%") && isRenderableBullet(text) {
			f.Glyph = text
		}
	}
	return f
}

// isRenderableBullet checks if a bullet character will render properly.
// Returns false for Private Use Area characters that require special fonts.
func isRenderableBullet(s string) bool {
	for _, r := range s {
		// Word commonly uses U+F0xx for Symbol/Wingdings characters
		if r >= 0xE000 && r <= 0xF8FF {
			return false
		}
		if r < 0x20 {
			return false
		}
	}
	return len(s) > 0
}
