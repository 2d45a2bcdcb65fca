package askai

// SchemaDescriptor is the fixed description of the queryable tables given to
// the model. It mirrors internal/store/migrations and is never introspected.
const SchemaDescriptor = `Table: posts
Columns:
  - post_id (bigint) PRIMARY KEY
  - post_url (varchar(500))
  - media_url (varchar(500))
  - post_datetime (timestamp)
  - caption (text)
  - likes (integer)
  - comments (integer)
  - impressions (integer)
  - members_reached (integer)
  - total_clicks (integer)
  - main_ebook_clicks (integer)
  - lead_magnet_clicks (integer)
  - profile_viewers (integer)
  - followers_gained (integer)
  - reactions (integer)
  - reposts (integer)
  - saves (integer)
  - sends (integer)
  - created_at (timestamp)
  - main_ebook_ctr (numeric(6,2))

Table: topics
Columns:
  - id (integer) PRIMARY KEY, auto-increment
  - name (varchar(255)) UNIQUE
  - created_at (timestamp)

Table: topic_posts
Columns:
  - topic_id (integer) COMPOSITE PRIMARY KEY, references topics.id
  - post_id (bigint) COMPOSITE PRIMARY KEY, references posts.post_id
`
