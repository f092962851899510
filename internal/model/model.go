package model

// Models returns every table model in creation order.
func Models() []interface{} {
	return []interface{}{
		(*User)(nil),
		(*Follow)(nil),
		(*Tag)(nil),
		(*Article)(nil),
		(*ArticleTag)(nil),
		(*Favorite)(nil),
		(*Comment)(nil),
	}
}
