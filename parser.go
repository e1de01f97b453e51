package coursegrid

import (
	"log/slog"
	"regexp"
	"strings"
)

var (
	sectionCodePattern = regexp.MustCompile(`^\d{5}$`)
	courseCodePattern  = regexp.MustCompile(`^\d{3}-[A-Z0-9]{3}-[A-Z0-9]{1,2}$`)
	additionalPattern  = regexp.MustCompile(`^ADDITIONAL`)
	noticePattern      = regexp.MustCompile(`\*\*\*.*\*\*\*`)
)

// complementaryRulesSentinel opens a block of registration rules that
// carries no record data; everything until the document title reappears is
// skipped.
const complementaryRulesSentinel = "COMPLEMENTARY RULES"

// Config controls parsing behavior.
type Config struct {
	// Institution is the name printed in page footers, e.g.
	// "John Abbott College". Footer lines are "<Institution> <page>".
	Institution string

	// Classifier validates candidate professor names during title
	// recovery. Defaults to the deterministic PatternClassifier.
	Classifier NameClassifier

	// Logger receives overlap warnings and heuristic notices.
	// Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the parser configuration for the source document.
func DefaultConfig() Config {
	return Config{
		Institution: "John Abbott College",
		Classifier:  PatternClassifier{},
	}
}

// Parser walks the reconstructed line stream in document order and
// assembles course sections. It owns two running accumulators, the
// in-flight section and the in-flight occurrence, which are moved into the
// output on flush and reset in place. The walk is strictly sequential:
// record boundaries only reveal themselves in document order, so there is
// nothing to parallelize here.
type Parser struct {
	bounds     ColumnBounds
	classifier NameClassifier
	log        *slog.Logger
	footer     *regexp.Regexp

	sections []Section
	current  Section
	leclab   LecLab
	nextID   int
}

// NewParser creates a parser for a document calibrated to bounds.
func NewParser(bounds ColumnBounds, cfg Config) *Parser {
	if cfg.Institution == "" {
		cfg.Institution = "John Abbott College"
	}
	if cfg.Classifier == nil {
		cfg.Classifier = PatternClassifier{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Parser{
		bounds:     bounds,
		classifier: cfg.Classifier,
		log:        cfg.Logger,
		footer:     regexp.MustCompile(`^` + regexp.QuoteMeta(cfg.Institution) + ` \d{1,3}`),
		leclab:     LecLab{Time: TimeMap{}},
		nextID:     1,
	}
}

// Parse consumes the ordered line stream and returns the finalized
// sections. The line at index 0 is the document title, which recurs as a
// page-header sentinel throughout the stream; the line after each
// recurrence names the course group the following records belong to.
func (p *Parser) Parse(lines Lines) []Section {
	if len(lines) == 0 {
		return nil
	}

	title := lines[0].Text()

	skippingRules := false
	i := 0
	for i < len(lines) {
		line := lines[i]
		i++
		text := line.Text()

		if p.footer.MatchString(text) || strings.HasPrefix(text, "SECTION") {
			continue
		}

		if text == complementaryRulesSentinel {
			skippingRules = true
		}
		if skippingRules {
			if text != title {
				continue
			}
			skippingRules = false
		}

		if text == title {
			if i >= len(lines) {
				break
			}
			course := lines[i].Text()
			i++

			if course != p.current.Course {
				p.flushSection()
				p.current.Course = ""
				p.current.Domain = ""
			}
			p.current.Course = course
			continue
		}

		p.parseLine(line)
	}

	p.flushSection()
	return p.sections
}

// parseLine classifies each word of a record line by the column band its
// x-coordinate falls in. Words outside every band are ignored; a free-text
// word in the course number column swallows the rest of the line.
func (p *Parser) parseLine(line Line) {
	section := &p.current

	didUpdateTitle := false
	isLecLabLine := false

	for i, w := range line.Words {
		x := w.X0
		text := w.Text

		switch {
		case p.bounds.Section <= x && x < p.bounds.Disc:
			// A word inside the band but off the column boundary is
			// rendering debris from a merged cell; drop the line.
			if x != p.bounds.Section {
				return
			}

			if sectionCodePattern.MatchString(text) {
				p.flushSection()
				section.Section = text
				section.ID = p.nextID
				p.nextID++
			} else {
				lineText := line.Text()
				if section.Domain != lineText {
					p.flushSection()
				}
				section.Domain = lineText
			}

		case x == p.bounds.Disc:
			// The keyword sometimes fuses with the neighbouring cell
			// ("CERAMICLecture"), hence substring rather than equality.
			if strings.Contains(text, "Lecture") {
				p.log.Info("lecture keyword fused into disc column", "word", text)
				isLecLabLine = true
				p.leclab.Kind = KindLecture
			} else if strings.Contains(text, "Laboratory") {
				isLecLabLine = true
				p.leclab.Kind = KindLaboratory
			}

		case x == p.bounds.CourseNumber:
			switch {
			case text == "Lecture":
				isLecLabLine = true
				p.leclab.Kind = KindLecture
			case text == "Laboratory":
				isLecLabLine = true
				p.leclab.Kind = KindLaboratory
			case courseCodePattern.MatchString(text):
				p.flushLecLab()
				section.Code = text
			default:
				section.More += line.Text()
				if additionalPattern.MatchString(text) || noticePattern.MatchString(text) {
					section.More += "\n"
				} else {
					section.More += " "
				}
				return
			}

		case p.bounds.CourseTitle <= x && x < p.bounds.Day:
			if isLecLabLine {
				p.leclab.Professor += text + " "
			} else {
				p.leclab.Title += text + " "
				didUpdateTitle = true
			}

		case x == p.bounds.Day:
			if i+1 < len(line.Words) {
				p.leclab.Time.Update(text, []string{line.Words[i+1].Text}, p.log)
			}
		}
	}

	if didUpdateTitle {
		p.leclab.Title = strings.TrimSpace(p.leclab.Title) + titleWrapMarker
	}
	if isLecLabLine {
		p.leclab.Professor = strings.TrimRight(p.leclab.Professor, " ")
	}
}

// flushLecLab moves the in-flight occurrence into the current section.
// Occurrences that never accumulated a title are boundary noise and are
// not flushed.
func (p *Parser) flushLecLab() {
	if p.leclab.Title == "" {
		return
	}

	hadProfessor := p.leclab.Professor != ""
	resolveTitle(&p.leclab, p.classifier)
	if !hadProfessor && p.leclab.Professor != "" {
		p.log.Info("recovered professor from wrapped title", "professor", p.leclab.Professor)
	}

	p.leclab.SectionID = p.current.ID
	p.current.LecLabs = append(p.current.LecLabs, p.leclab)
	p.leclab.clear()
}

// flushSection finalizes the current section and appends it to the output.
// A section that never saw a 5-digit code was never started and is not
// flushed. The reset accumulator keeps the course and domain labels so a
// section-code change mid-course does not need to re-read them.
func (p *Parser) flushSection() {
	if p.current.Section == "" {
		return
	}

	p.flushLecLab()

	for _, l := range p.current.LecLabs {
		if l.Title != "" {
			p.current.Title = l.Title
			break
		}
	}

	p.current.More = strings.TrimSpace(p.current.More)
	p.current.ViewGrid = BuildViewGrid(p.current.LecLabs)

	p.sections = append(p.sections, p.current)

	p.current = Section{
		Course: p.current.Course,
		Domain: p.current.Domain,
	}
}
