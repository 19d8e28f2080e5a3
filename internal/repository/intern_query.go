package repository

import (
	"strings"

	"github.com/Sanjit42/naming-service/internal/domain"
	"github.com/Sanjit42/naming-service/internal/repository/builder"
)

// relationTable maps a relation to its table and alias.
type relationTable struct {
	table string
	alias string
}

var relationTables = map[domain.Relation]relationTable{
	domain.RelationIntern:  {"interns", "i"},
	domain.RelationEmails:  {"emails", "e"},
	domain.RelationGithub:  {"github_info", "gh"},
	domain.RelationSlack:   {"slack_info", "sl"},
	domain.RelationDropbox: {"dropbox_info", "dr"},
}

// joinOrder keeps generated SQL stable.
var joinOrder = []domain.Relation{
	domain.RelationEmails,
	domain.RelationGithub,
	domain.RelationSlack,
	domain.RelationDropbox,
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike quotes LIKE wildcards so a search term matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// compileQuery turns q into a SELECT of distinct intern ids ordered by id.
// Dependents are LEFT JOINed so interns without a given dependent stay visible.
func compileQuery(q domain.Query) *builder.SQLBuilder {
	used := map[domain.Relation]bool{}
	for _, p := range append(append([]domain.Predicate(nil), q.AnyOf...), q.AllOf...) {
		if ref, ok := p.Field.Ref(); ok {
			used[ref.Relation] = true
		}
	}

	b := builder.NewSQLBuilder().Select("i.id").Distinct().From("interns i")
	for _, rel := range joinOrder {
		if used[rel] {
			t := relationTables[rel]
			b.Join("LEFT", t.table+" "+t.alias, t.alias+".intern_id = i.id")
		}
	}

	if len(q.AnyOf) > 0 {
		b.WhereGroup(func(g *builder.SQLBuilder) *builder.SQLBuilder {
			for _, p := range q.AnyOf {
				cond, args := predicateSQL(p)
				g.Or(cond, args...)
			}
			return g
		})
	}
	for _, p := range q.AllOf {
		cond, args := predicateSQL(p)
		b.Where(cond, args...)
	}
	return b.OrderBy("i.id ASC")
}

func predicateSQL(p domain.Predicate) (string, []interface{}) {
	ref, ok := p.Field.Ref()
	if !ok {
		return "FALSE", nil
	}
	col := relationTables[ref.Relation].alias + "." + ref.Column

	if p.Comparison == domain.Contains {
		if ref.Kind != domain.KindString {
			col = "CAST(" + col + " AS TEXT)"
		}
		return col + ` LIKE ? ESCAPE '\'`, []interface{}{"%" + escapeLike(p.Value) + "%"}
	}

	v, ok := domain.Coerce(ref.Kind, p.Value)
	if !ok {
		return "FALSE", nil
	}
	return col + " = ?", []interface{}{v}
}
