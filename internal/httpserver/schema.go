package httpserver

// schemaSDL is the public GraphQL contract. Every mutating field carries the target id
// and the caller's last-seen version as versionId.
const schemaSDL = `
schema {
	query: Query
	mutation: Mutation
}

type Query {
	products: [Product!]!
	singleProduct(id: String!): Product!
	searchProducts(query: String!): [Product!]!
	searchSuggestion(keyword: String!): [Suggestion!]!
	getCartById(cartId: String!): Cart!
	# Binds guest orders placed with the session email to the session customer.
	verifyUserByTokenId: GuestOrderReport!
}

type Mutation {
	createCart(productId: String!): Cart!
	addItemsToCart(productId: String!, cartId: String!, versionId: String!, quantity: Int = 1): Cart!
	removeItemFromCart(lineItemId: String!, cartId: String!, versionId: String!): Cart!
	changeCartItemsQty(cartId: String!, versionId: String!, lineItemId: String!, quantity: Int!): Cart!
	addShippingAddress(address: AddressInput!, cartId: String!, versionId: String!): Cart!
	addBillingAddress(address: AddressInput!, cartId: String!, versionId: String!): Cart!
	addShippingMethod(cartId: String!, versionId: String!, shippingMethodId: String!): Cart!
	addEmailIdAsGuest(cartId: String!, versionId: String!, email: String!): Cart!
	generateOrderByCartID(cartId: String!, versionId: String!): Order!
	verifySocialUser(token: String!): SocialResult!
	createCustomer(tokenId: String!): AccessToken!
	generateToken(token: String!): AccessToken!
	verifyExistUser(email: String!, phoneNumber: String!): UserExistence!
}

type LocalizedString {
	en: String
	value(locale: String!): String
}

type Money {
	centAmount: Int!
	currencyCode: String!
	fractionDigits: Int!
}

type TaxedPrice {
	totalNet: Money!
	totalGross: Money!
}

type Price {
	id: String
	value: Money!
}

type Image {
	url: String!
	label: String
	width: Int
	height: Int
}

type Attribute {
	name: String!
	value: String!
}

type ProductVariant {
	id: Int!
	listingId: String
	sku: String
	prices: [Price!]!
	images: [Image!]!
	attributes: [Attribute!]!
}

type Product {
	id: String!
	key: String
	version: Int!
	name: LocalizedString!
	slug: LocalizedString!
	metaDescription: LocalizedString!
	masterVariant: ProductVariant!
	variants: [ProductVariant!]!
}

type Suggestion {
	text: String!
}

type Address {
	firstName: String
	lastName: String
	streetName: String
	country: String!
	city: String
	postalCode: String
	phone: String
	email: String
}

input AddressInput {
	firstName: String
	lastName: String
	streetName: String
	country: String!
	city: String
	postalCode: String
	phone: String
	email: String
}

type LineItem {
	id: String!
	productId: String!
	productKey: String
	name: LocalizedString!
	variant: ProductVariant!
	price: Money!
	quantity: Int!
	totalPrice: Money!
}

type Cart {
	id: String!
	version: Int!
	versionId: String!
	cartState: String!
	customerId: String
	customerEmail: String
	lineItems: [LineItem!]!
	totalPrice: Money!
	taxedPrice: TaxedPrice
	totalLineItemQuantity: Int!
	shippingAddress: Address
	billingAddress: Address
	shippingMethodId: String
}

type Order {
	id: String!
	version: Int!
	versionId: String!
	orderNumber: String
	orderState: String!
	customerId: String
	customerEmail: String
	lineItems: [LineItem!]!
	totalPrice: Money!
	taxedPrice: TaxedPrice
	createdAt: String!
}

type SocialResult {
	signupWithSocial: Boolean
	loginWithSocial: Boolean
}

type AccessToken {
	accessToken: String!
	tokenType: String!
	refreshToken: String
	expiresIn: Int!
	scope: String
}

type UserExistence {
	userExist: Boolean!
}

type GuestOrderReport {
	customerId: String!
	email: String!
	failed: Int!
	results: [GuestOrderResult!]!
}

type GuestOrderResult {
	orderId: String!
	ok: Boolean!
	order: Order
	error: ResultError
}

type ResultError {
	code: String!
	message: String!
}
`
