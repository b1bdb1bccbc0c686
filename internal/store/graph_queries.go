package store

const (
	savePersonQuery = `
		MERGE (p:Person {id: $id})
		SET p.project_id = $project_id,
			p.name = $name,
			p.aliases = $aliases,
			p.relationship_to_user = $relationship_to_user,
			p.bio_snippet = $bio_snippet,
			p.importance_score = $importance_score,
			p.confidence_score = $confidence_score,
			p.extraction_status = $extraction_status,
			p.merged_from_id = $merged_from_id,
			p.merged_from_ids = $merged_from_ids,
			p.created_at = $created_at
		RETURN p.id AS id
	`

	getPersonQuery = `
		MATCH (p:Person {id: $id})
		RETURN p.id AS id, p.project_id AS project_id, p.name AS name, p.aliases AS aliases,
			p.relationship_to_user AS relationship_to_user, p.bio_snippet AS bio_snippet,
			p.importance_score AS importance_score, p.confidence_score AS confidence_score,
			p.extraction_status AS extraction_status, p.merged_from_id AS merged_from_id,
			p.merged_from_ids AS merged_from_ids, p.created_at AS created_at
	`

	listPeopleQuery = `
		MATCH (p:Person {project_id: $project_id})
		WHERE NOT p.extraction_status IN $excluded
		RETURN p.id AS id, p.project_id AS project_id, p.name AS name, p.aliases AS aliases,
			p.relationship_to_user AS relationship_to_user, p.bio_snippet AS bio_snippet,
			p.importance_score AS importance_score, p.confidence_score AS confidence_score,
			p.extraction_status AS extraction_status, p.merged_from_id AS merged_from_id,
			p.merged_from_ids AS merged_from_ids, p.created_at AS created_at
		ORDER BY p.created_at, p.id
	`

	listPhotoAssociationsQuery = `
		MATCH (a:PhotoAssociation {person_id: $person_id})
		RETURN a.id AS id, a.person_id AS person_id, a.photo_id AS photo_id
		ORDER BY a.id
	`

	reassignPhotoAssociationQuery = `
		MATCH (a:PhotoAssociation {id: $id})
		SET a.person_id = $new_person_id
		RETURN a.id AS id
	`

	listRelationshipsQuery = `
		MATCH (from:Person)-[r:RELATES]->(to:Person)
		WHERE from.id = $person_id OR to.id = $person_id
		RETURN r.id AS id, from.id AS from_person_id, to.id AS to_person_id, r.relation_type AS relation_type
		ORDER BY r.id
	`

	getRelationshipQuery = `
		MATCH (from:Person)-[r:RELATES {id: $id}]->(to:Person)
		RETURN r.id AS id, from.id AS from_person_id, to.id AS to_person_id, r.relation_type AS relation_type
	`

	// Cypher cannot re-point an existing edge, so reassignment recreates it
	// with the same id and type.
	reassignRelationshipFromQuery = `
		MATCH (old:Person)-[r:RELATES {id: $id}]->(to:Person)
		MATCH (new:Person {id: $new_person_id})
		CREATE (new)-[r2:RELATES {id: r.id, relation_type: r.relation_type}]->(to)
		DELETE r
		RETURN r2.id AS id
	`

	reassignRelationshipToQuery = `
		MATCH (from:Person)-[r:RELATES {id: $id}]->(old:Person)
		MATCH (new:Person {id: $new_person_id})
		CREATE (from)-[r2:RELATES {id: r.id, relation_type: r.relation_type}]->(new)
		DELETE r
		RETURN r2.id AS id
	`

	savePhotoAssociationQuery = `
		MERGE (a:PhotoAssociation {id: $id})
		SET a.person_id = $person_id, a.photo_id = $photo_id
		RETURN a.id AS id
	`

	saveRelationshipQuery = `
		MATCH (from:Person {id: $from_person_id})
		MATCH (to:Person {id: $to_person_id})
		MERGE (from)-[r:RELATES {id: $id}]->(to)
		SET r.relation_type = $relation_type
		RETURN r.id AS id
	`

	saveMergeLogQuery = `
		CREATE (m:MergeLog {
			id: $id,
			project_id: $project_id,
			primary_person_id: $primary_person_id,
			secondary_person_id: $secondary_person_id,
			strategy: $strategy,
			rollback_json: $rollback_json,
			status: $status,
			created_at: $created_at
		})
		RETURN m.id AS id
	`

	getMergeLogQuery = `
		MATCH (m:MergeLog {id: $id})
		RETURN m.id AS id, m.project_id AS project_id, m.primary_person_id AS primary_person_id,
			m.secondary_person_id AS secondary_person_id, m.strategy AS strategy,
			m.rollback_json AS rollback_json, m.status AS status, m.created_at AS created_at
	`

	updateMergeLogStatusQuery = `
		MATCH (m:MergeLog {id: $id})
		SET m.status = $status
		RETURN m.id AS id
	`
)
