package deploy

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rileyhilliard/deployr/internal/errors"
)

// DefaultRevision rolls back one commit.
const DefaultRevision = "1"

// RollbackWarning is printed after every rollback since migrations are never reverted.
const RollbackWarning = "Remember to check your database, because it may not be in sync with your code!!"

var offsetPattern = regexp.MustCompile(`^\d+$`)

// Revision is a rollback target: either a number of commits behind HEAD or
// an explicit ref such as a tag, branch or hash.
type Revision struct {
	offset   int
	ref      string
	isOffset bool
}

// ParseRevision interprets a rollback argument. All-digit strings are
// offsets, anything else is a ref. An empty string means DefaultRevision.
func ParseRevision(s string) (Revision, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		s = DefaultRevision
	}

	if !offsetPattern.MatchString(s) {
		if strings.ContainsAny(s, " \t\n") || strings.HasPrefix(s, "-") {
			return Revision{}, errors.New(errors.ErrConfig,
				fmt.Sprintf("Invalid revision %q", s),
				"A revision is a number of commits to go back, or a single tag, branch or commit hash.")
		}
		return Revision{ref: s}, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return Revision{}, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Revision offset %s is out of range", s),
			"Use a smaller number of commits, or a commit hash.")
	}
	return Revision{offset: n, isOffset: true}, nil
}

// RefRevision treats ref as an explicit ref even when it is all digits,
// as short commit hashes can be.
func RefRevision(ref string) Revision {
	return Revision{ref: ref}
}

// Offset reports how many commits back to go, and whether r is an offset at all.
func (r Revision) Offset() (int, bool) {
	return r.offset, r.isOffset
}

// Ref returns the explicit ref, or "" for offsets.
func (r Revision) Ref() string {
	return r.ref
}

func (r Revision) String() string {
	if r.isOffset {
		return "HEAD~" + strconv.Itoa(r.offset)
	}
	return r.ref
}

// CheckoutRevision moves the remote checkout to rev and returns what it now points at.
// Offsets are reported as the new HEAD's short hash. A ref that cannot be
// checked out is a RevisionNotFound error.
func (d *Deployer) CheckoutRevision(remote Runner, rev Revision) (string, error) {
	d.reporter.StageStarted(StageRollback)
	resolved, err := d.checkoutRevision(remote, rev)
	if err != nil {
		d.reporter.StageFailed(StageRollback, err)
		return "", err
	}
	d.reporter.StageSucceeded(StageRollback)
	return resolved, nil
}

func (d *Deployer) checkoutRevision(remote Runner, rev Revision) (string, error) {
	if n, ok := rev.Offset(); ok {
		if _, err := d.run(remote, d.cmds.GitCheckoutOffset(n)); err != nil {
			return "", err
		}
		res, err := d.run(remote, d.cmds.GitShortHead())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(res.Stdout), nil
	}

	res, err := d.run(remote, d.cmds.GitCheckoutRef(rev.Ref()))
	if err != nil {
		notFound := errors.NewRevisionNotFound(rev.Ref())
		if out := strings.TrimSpace(res.Output); out != "" {
			notFound.Cause = fmt.Errorf("%s", out)
		}
		return "", notFound
	}
	return rev.Ref(), nil
}

// Commit is one line of `git log --oneline`.
type Commit struct {
	Hash    string
	Subject string
}

func (c Commit) String() string {
	if c.Subject == "" {
		return c.Hash
	}
	return c.Hash + " " + c.Subject
}

// ParseLog parses `git log --oneline` output.
func ParseLog(out string) []Commit {
	var commits []Commit
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		hash, subject, _ := strings.Cut(line, " ")
		commits = append(commits, Commit{Hash: hash, Subject: strings.TrimSpace(subject)})
	}
	return commits
}

// RecentCommits lists the last n commits of the remote checkout.
func (d *Deployer) RecentCommits(remote Runner, n int) ([]Commit, error) {
	d.reporter.StageStarted(StageRecentCommit)
	res, err := d.run(remote, d.cmds.GitLog(n))
	if err != nil {
		d.reporter.StageFailed(StageRecentCommit, err)
		return nil, err
	}
	d.reporter.StageSucceeded(StageRecentCommit)
	return ParseLog(res.Stdout), nil
}
