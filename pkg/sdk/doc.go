// Package solrmap embeds the solrmap indexer in a Go application.
//
// Records are mapped to index documents through schemas registered per
// application label and model name. Saving or deleting a record sends the
// matching update request and commits; searches return typed results with
// hierarchical facets.
//
// # Low-level API
//
//	client, _ := solrmap.New(ctx,
//	    solrmap.WithSolr("http://localhost:8983/solr/update", "http://localhost:8983/solr/select"),
//	)
//	_ = client.Register("blog", "post",
//	    solrmap.Field{Name: "title", Spec: solrmap.FieldSpec{Kind: solrmap.KindText, Copy: true}},
//	)
//	_ = client.Save(ctx, solrmap.MapRecord{App: "blog", Model: "post", ID: "7",
//	    Attrs: map[string]any{"title": "Obama Wins"}})
//	res, _ := client.Search(ctx, solrmap.Param{Key: "q", Value: "obama"})
//
// # Typed API
//
//	type Post struct {
//	    ID        int       `solrmap:"id,id"`
//	    Link      string    `solrmap:"url,url"`
//	    Title     string    `solrmap:"title,text,copy"`
//	    Views     int64     `solrmap:"views,integer,dynamic"`
//	    Published time.Time `solrmap:"published,datetime"`
//	}
//
//	posts, _ := solrmap.NewIndex[Post](client, "blog", "post")
//	_ = posts.Save(ctx, post)
//	page, _ := posts.Search().Query("obama").Rows(5).Facet("category").Do(ctx)
package solrmap
