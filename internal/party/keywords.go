package party

// Bucket names a gender/category headcount bucket.
type Bucket string

const (
	BucketMen   Bucket = "men"
	BucketWomen Bucket = "women"
)

// PrimaryBucket receives the whole total when a booking carries no gendered signal.
const PrimaryBucket = BucketMen

// Buckets maps each bucket to the label tokens that identify it.
var Buckets = map[Bucket][]string{
	BucketMen:   {"men", "man", "male", "males", "boy", "boys", "gent", "gents", "guy", "guys"},
	BucketWomen: {"women", "woman", "female", "females", "girl", "girls", "lady", "ladies"},
}

var bucketByToken = indexBuckets(Buckets)

func indexBuckets(table map[Bucket][]string) map[string]Bucket {
	out := make(map[string]Bucket)
	for bucket, tokens := range table {
		for _, token := range tokens {
			out[token] = bucket
		}
	}
	return out
}
