package entity

import (
	"strings"
)

type eagerLoad struct {
	name    string
	columns []string
}

// With registers relations to eager load with the results. "name:col1,col2" selects columns of the
// related table, "name.nested" loads nested relations and registers its parents too
func (q *Query) With(relations ...string) *Query {
	for _, relation := range relations {
		name, columns := parseEagerLoad(relation)
		if name == "" {
			continue
		}

		segments := strings.Split(name, ".")
		for idx := 1; idx < len(segments); idx++ {
			q.addEagerLoad(strings.Join(segments[:idx], "."), nil)
		}
		q.addEagerLoad(name, columns)
	}
	return q
}

// Without removes relations registered with With, nested relations of removed ones included
func (q *Query) Without(relations ...string) *Query {
	eager := q.eager[:0]
	for _, load := range q.eager {
		keep := true
		for _, name := range relations {
			if load.name == name || strings.HasPrefix(load.name, name+".") {
				keep = false
				break
			}
		}
		if keep {
			eager = append(eager, load)
		}
	}
	q.eager = eager
	return q
}

// EagerLoads returns the registered relation names
func (q *Query) EagerLoads() []string {
	names := make([]string, len(q.eager))
	for idx, load := range q.eager {
		names[idx] = load.name
	}
	return names
}

func (q *Query) addEagerLoad(name string, columns []string) {
	for idx, load := range q.eager {
		if load.name == name {
			if len(columns) > 0 {
				q.eager[idx].columns = columns
			}
			return
		}
	}
	q.eager = append(q.eager, eagerLoad{name: name, columns: columns})
}

func parseEagerLoad(relation string) (string, []string) {
	name, list, found := strings.Cut(relation, ":")
	name = strings.TrimSpace(name)
	if !found {
		return name, nil
	}

	var columns []string
	for _, column := range strings.Split(list, ",") {
		if column = strings.TrimSpace(column); column != "" {
			columns = append(columns, column)
		}
	}
	return name, columns
}

// eagerLoadRelations loads the top level relations onto models, each one handing its nested
// relations down to the related query
func (q *Query) eagerLoadRelations(models []*Model) error {
	for _, load := range q.eager {
		if strings.Contains(load.name, ".") {
			continue
		}
		if err := q.eagerLoadRelation(models, load, q.nestedEagerLoads(load.name)); err != nil {
			return err
		}
	}
	return nil
}

func (q *Query) nestedEagerLoads(name string) []eagerLoad {
	var nested []eagerLoad
	prefix := name + "."
	for _, load := range q.eager {
		if strings.HasPrefix(load.name, prefix) {
			nested = append(nested, eagerLoad{name: strings.TrimPrefix(load.name, prefix), columns: load.columns})
		}
	}
	return nested
}

func (q *Query) eagerLoadRelation(models []*Model, load eagerLoad, nested []eagerLoad) error {
	factory, err := q.def.relation(load.name)
	if err != nil {
		return err
	}

	relation := factory(q.def.newInstance(q.db), false)
	relation.AddEagerConstraints(models)

	query := relation.Query()
	if len(load.columns) > 0 {
		query.Select(load.columns...)
	}
	query.eager = append(query.eager, nested...)

	relation.InitRelation(models, load.name)

	results, err := relation.GetEager()
	if err != nil {
		return err
	}

	relation.Match(models, results, load.name)
	return nil
}
