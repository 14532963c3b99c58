package shopify

const productFields = `
fragment ProductFields on Product {
  id
  title
  handle
  description
  mediaCount { count }
  images(first: 1) {
    edges { node { url altText } }
  }
  variants(first: 1) {
    edges { node { id price } }
  }
  metafields(first: 20) {
    edges { node { namespace key value type } }
  }
}
`

const productsQuery = `
query GetProducts($first: Int!, $cursor: String, $query: String) {
  products(first: $first, after: $cursor, query: $query) {
    pageInfo { hasNextPage endCursor }
    edges { node { ...ProductFields } }
  }
}
` + productFields

const productQuery = `
query GetProduct($id: ID!) {
  product(id: $id) { ...ProductFields }
}
` + productFields

const productCreateMutation = `
mutation productCreate($input: ProductInput!) {
  productCreate(input: $input) {
    product { ...ProductFields }
    userErrors { field message }
  }
}
` + productFields

const productUpdateMutation = `
mutation productUpdate($input: ProductInput!) {
  productUpdate(input: $input) {
    product { ...ProductFields }
    userErrors { field message }
  }
}
` + productFields

const stagedUploadsMutation = `
mutation stagedUploadsCreate($input: [StagedUploadInput!]!) {
  stagedUploadsCreate(input: $input) {
    stagedTargets {
      url
      resourceUrl
      parameters { name value }
    }
    userErrors { field message }
  }
}
`

const createMediaMutation = `
mutation productCreateMedia($media: [CreateMediaInput!]!, $productId: ID!) {
  productCreateMedia(media: $media, productId: $productId) {
    media {
      ... on MediaImage { id }
    }
    mediaUserErrors { field message }
  }
}
`
